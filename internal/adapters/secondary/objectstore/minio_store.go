package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/config"
	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

const (
	inputPrefix   = "input/"
	croppedPrefix = "cropped/"
)

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore creates an image store on a MinIO/S3 bucket, creating the bucket when missing.
func NewMinioStore(ctx context.Context, cfg *config.MinioConfig) (ports.ImageStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	endpoint, useSSL := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	s := &minioStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// parseEndpoint accepts either host:port or a URL; an https scheme forces TLS.
func parseEndpoint(raw string, useSSL bool) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, useSSL
	}
	if u.Scheme == "https" {
		useSSL = true
	}
	return u.Host, useSSL
}

func (s *minioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	log.WithField("bucket", s.bucket).Info("created image bucket")
	return nil
}

func (s *minioStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) SaveImage(ctx context.Context, img *domain.SourceImage) error {
	key := inputPrefix + img.Name
	if err := s.put(ctx, key, img.Data, contentType(img.Format)); err != nil {
		return fmt.Errorf("save image %s: %w", img.Name, err)
	}
	img.ID = objectID(s.bucket, key)
	return nil
}

func (s *minioStore) ListImages(ctx context.Context) ([]domain.SourceImage, error) {
	var images []domain.SourceImage
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: inputPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list images: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		format, err := domain.FormatFromName(name)
		if err != nil {
			continue
		}
		data, err := s.get(ctx, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", obj.Key, err)
		}
		images = append(images, domain.SourceImage{
			ID:        objectID(s.bucket, obj.Key),
			Name:      name,
			Format:    format,
			Size:      len(data),
			CreatedAt: obj.LastModified,
			Data:      data,
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

func (s *minioStore) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (s *minioStore) SaveCrop(ctx context.Context, crop domain.CropArtifact) error {
	if err := s.put(ctx, croppedPrefix+crop.Filename, crop.Data, "image/jpeg"); err != nil {
		return fmt.Errorf("save crop %s: %w", crop.Filename, err)
	}
	return nil
}

func (s *minioStore) Clear(ctx context.Context) (int, error) {
	removed := 0
	var errs []error
	for _, prefix := range []string{inputPrefix, croppedPrefix} {
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				errs = append(errs, fmt.Errorf("list %s: %w", prefix, obj.Err))
				break
			}
			if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", obj.Key, err))
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

func objectID(bucket, key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("s3://"+bucket+"/"+key))
}

func contentType(f domain.ImageFormat) string {
	switch f {
	case domain.FormatJPEG:
		return "image/jpeg"
	case domain.FormatPNG, domain.FormatGIF, domain.FormatBMP, domain.FormatWEBP:
		return "image/" + strings.ToLower(string(f))
	default:
		return "application/octet-stream"
	}
}
