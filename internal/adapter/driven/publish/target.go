package publish

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"golang.org/x/sync/errgroup"
)

// Target is a parsed object-store destination such as s3://bucket/prefix.
type Target struct {
	Scheme string
	Bucket string
	Prefix string
}

// ParseTarget splits an s3:// or gs:// URI.
func ParseTarget(uri string) (Target, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %s: %v", types.ErrUnknownTarget, uri, err)
	}
	if u.Scheme != "s3" && u.Scheme != "gs" {
		return Target{}, fmt.Errorf("%w: %s", types.ErrUnknownTarget, uri)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("%w: missing bucket in %s", types.ErrUnknownTarget, uri)
	}
	return Target{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Prefix: strings.Trim(u.Path, "/"),
	}, nil
}

// Key returns the object key of a local file under the target prefix.
func (t Target) Key(file string) string {
	return path.Join(t.Prefix, filepath.Base(file))
}

// URI returns the remote location of a local file.
func (t Target) URI(file string) string {
	return fmt.Sprintf("%s://%s/%s", t.Scheme, t.Bucket, t.Key(file))
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/vnd.apache.parquet"
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// uploadAll runs upload for every file with at most limit uploads in flight and
// returns the remote URIs in input order.
func uploadAll(ctx context.Context, files []string, limit int, upload func(ctx context.Context, file string) (string, error)) ([]string, error) {
	if limit < 1 {
		limit = 1
	}
	uris := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			uri, err := upload(gctx, file)
			if err != nil {
				return fmt.Errorf("upload %s: %w", filepath.Base(file), err)
			}
			uris[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}
