package services

import (
	"fmt"
	"regexp"
	"sort"

	"plate-lookup-service/internal/core/domain"
)

// PlateResolver turns raw OCR results into a deduplicated, sorted set of plate candidates.
type PlateResolver struct {
	pattern *regexp.Regexp
}

// NewPlateResolver compiles an optional validation pattern. The pattern is matched against the
// whole normalized plate; an empty pattern accepts every non-empty plate.
func NewPlateResolver(pattern string) (*PlateResolver, error) {
	r := &PlateResolver{}
	if pattern == "" {
		return r, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile plate pattern: %w", err)
	}
	r.pattern = re
	return r, nil
}

// Resolve filters unreadable results, normalizes text and collapses duplicates by normalized value.
// Rejections are returned as diagnostics so nothing is dropped silently.
func (r *PlateResolver) Resolve(results []domain.OcrResult) ([]domain.PlateCandidate, []domain.Diagnostic) {
	bySlot := make(map[string]int)
	var candidates []domain.PlateCandidate
	var diags []domain.Diagnostic

	for _, res := range results {
		if res.Unreadable {
			continue
		}
		plate := domain.NormalizePlate(res.Text)
		if plate == "" {
			diags = append(diags, domain.Diagnostic{
				Stage:   domain.StageResolve,
				Subject: res.Crop,
				Message: fmt.Sprintf("text %q is empty after normalization", res.Text),
			})
			continue
		}
		if r.pattern != nil && !r.pattern.MatchString(plate) {
			diags = append(diags, domain.Diagnostic{
				Stage:   domain.StageResolve,
				Subject: res.Crop,
				Message: fmt.Sprintf("plate %q does not match pattern %s", plate, r.pattern.String()),
			})
			continue
		}

		if i, ok := bySlot[plate]; ok {
			candidates[i].Sources = append(candidates[i].Sources, res.Crop)
			continue
		}
		bySlot[plate] = len(candidates)
		candidates = append(candidates, domain.PlateCandidate{Text: plate, Sources: []string{res.Crop}})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Text < candidates[j].Text
	})
	return candidates, diags
}
