package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"google.golang.org/api/option"
)

// GCSPublisher uploads files to a Google Cloud Storage bucket.
type GCSPublisher struct {
	target      Target
	client      *storage.Client
	concurrency int
}

func NewGCSPublisher(ctx context.Context, target Target, credentials string, concurrency int) (*GCSPublisher, error) {
	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("bucket", target.Bucket).Msg("publishing to GCS")
	return &GCSPublisher{target: target, client: client, concurrency: concurrency}, nil
}

func (p *GCSPublisher) Publish(ctx context.Context, files []string) ([]string, error) {
	return uploadAll(ctx, files, p.concurrency, p.upload)
}

func (p *GCSPublisher) upload(ctx context.Context, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := p.client.Bucket(p.target.Bucket).Object(p.target.Key(file)).NewWriter(ctx)
	w.ContentType = contentType(file)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("file", file).Str("uri", p.target.URI(file)).Msg("uploaded")
	return p.target.URI(file), nil
}

func (p *GCSPublisher) Close() error {
	return p.client.Close()
}
