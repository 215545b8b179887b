package objectstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"google.golang.org/api/option"
)

// operationTimeout bounds a single bucket call. Callers may pass contexts
// that never cancel.
const operationTimeout = 30 * time.Second

// objectBucket is the subset of bucket operations the image store needs.
type objectBucket interface {
	Put(ctx context.Context, objectPath, contentType string, data []byte) error
	Remove(ctx context.Context, objectPath string) error
}

// gcsBucket adapts a storage.BucketHandle to objectBucket.
type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b *gcsBucket) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	w := b.handle.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object writer: %w", err)
	}
	return nil
}

func (b *gcsBucket) Remove(ctx context.Context, objectPath string) error {
	err := b.handle.Object(objectPath).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// GCSImageStore uploads profile images and deletes them by public URL.
type GCSImageStore struct {
	bucket     objectBucket
	bucketName string
	publicBase string
	client     *storage.Client
	logger     *slog.Logger
}

// NewGCSImageStore creates an image store over a Cloud Storage client.
// Objects are addressed as <publicBaseURL>/<bucket>/<path>.
func NewGCSImageStore(client *storage.Client, cfg config.StorageConfig, logger *slog.Logger) (*GCSImageStore, error) {
	if client == nil {
		return nil, errors.New("objectstore: storage client cannot be nil")
	}
	return newImageStore(&gcsBucket{handle: client.Bucket(cfg.Bucket)}, cfg, client, logger)
}

// NewGCSImageStoreFromConfig opens a storage client with the base64 encoded
// service account, or with application default credentials when empty.
func NewGCSImageStoreFromConfig(
	ctx context.Context,
	cfg config.StorageConfig,
	credentialsBase64 string,
	logger *slog.Logger,
) (*GCSImageStore, error) {
	var opts []option.ClientOption
	if credentialsBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("objectstore: decode credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(raw))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: create storage client: %w", err)
	}
	return NewGCSImageStore(client, cfg, logger)
}

func newImageStore(
	bucket objectBucket,
	cfg config.StorageConfig,
	client *storage.Client,
	log *slog.Logger,
) (*GCSImageStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("objectstore: bucket cannot be empty")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("objectstore: public base url cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	return &GCSImageStore{
		bucket:     bucket,
		bucketName: cfg.Bucket,
		publicBase: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		client:     client,
		logger:     log.With("component", "image_store"),
	}, nil
}

// Upload decodes a data URL payload, stores it under folder with a fresh
// name and returns its public URL.
func (s *GCSImageStore) Upload(ctx context.Context, folder, payload string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	img, err := ParseDataURL(payload)
	if err != nil {
		return "", err
	}

	objectPath := uuid.NewString() + img.Extension
	if folder = strings.Trim(folder, "/"); folder != "" {
		objectPath = folder + "/" + objectPath
	}

	putCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := s.bucket.Put(putCtx, objectPath, img.ContentType, img.Data); err != nil {
		return "", fmt.Errorf("objectstore: upload %s: %w", objectPath, err)
	}

	log.DebugContext(ctx, "image uploaded",
		"object", objectPath,
		"content_type", img.ContentType,
		"bytes", len(img.Data))

	return s.PublicURL(objectPath), nil
}

// Delete removes the object behind a public URL. URLs that do not point into
// this bucket are ignored, as are objects that no longer exist.
func (s *GCSImageStore) Delete(ctx context.Context, publicURL string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	objectPath, ok := s.objectPath(publicURL)
	if !ok {
		log.WarnContext(ctx, "ignoring image url outside bucket", "url", publicURL)
		return nil
	}

	removeCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := s.bucket.Remove(removeCtx, objectPath); err != nil {
		return fmt.Errorf("objectstore: delete %s: %w", objectPath, err)
	}

	log.DebugContext(ctx, "image deleted", "object", objectPath)
	return nil
}

// PublicURL returns the public URL of an object in the bucket.
func (s *GCSImageStore) PublicURL(objectPath string) string {
	return s.publicBase + "/" + s.bucketName + "/" + objectPath
}

// Close releases the underlying storage client, if the store owns one.
func (s *GCSImageStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GCSImageStore) objectPath(publicURL string) (string, bool) {
	prefix := s.publicBase + "/" + s.bucketName + "/"
	rest, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || rest == "" {
		return "", false
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}
	return rest, true
}
