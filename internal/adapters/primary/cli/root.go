package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plate-lookup-service/internal/core/domain"
	"plate-lookup-service/internal/core/services"
)

// Deps are the services the commands drive.
type Deps struct {
	Pipeline *services.PipelineService
	Images   *services.ImageService
	Close    func()
}

// DepsFactory builds Deps on first use so that --help works without any configuration.
type DepsFactory func(ctx context.Context) (*Deps, error)

// NewRootCmd creates the lprctl command tree.
func NewRootCmd(factory DepsFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "lprctl",
		Short:         "Detect, read and verify licence plates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(factory), newClearCmd(factory))
	return root
}

func withDeps(ctx context.Context, factory DepsFactory, fn func(*Deps) error) error {
	deps, err := factory(ctx)
	if err != nil {
		return err
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(deps)
}

func newRunCmd(factory DepsFactory) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "run <image>...",
		Short: "Run the pipeline over local image files and print the report",
		Long: `Runs detection, OCR and registry lookup over the given image files and
prints the run report as JSON. Images are not written to the image store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([]domain.SourceImage, 0, len(args))
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("read %s: %w", p, err)
				}
				img, err := domain.NewSourceImage(p, data)
				if err != nil {
					return fmt.Errorf("%s: %w", p, err)
				}
				images = append(images, *img)
			}

			return withDeps(cmd.Context(), factory, func(d *Deps) error {
				report, err := d.Pipeline.Run(cmd.Context(), images)
				if err != nil {
					return fmt.Errorf("pipeline run failed: %w", err)
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				if !compact {
					enc.SetIndent("", "  ")
				}
				return enc.Encode(report)
			})
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print the report on a single line")
	return cmd
}

func newClearCmd(factory DepsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every uploaded image and crop from the image store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), factory, func(d *Deps) error {
				removed, err := d.Images.Clear(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Cleared %d file(s).\n", removed)
				return nil
			})
		},
	}
}
