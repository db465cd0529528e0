package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Target
		wantErr bool
	}{
		{name: "s3 with prefix", uri: "s3://gaa-data/aggregates/2024/", want: Target{Scheme: "s3", Bucket: "gaa-data", Prefix: "aggregates/2024"}},
		{name: "gcs bucket only", uri: "gs://gaa-data", want: Target{Scheme: "gs", Bucket: "gaa-data"}},
		{name: "unknown scheme", uri: "ftp://gaa-data/x", wantErr: true},
		{name: "missing bucket", uri: "s3:///x", wantErr: true},
		{name: "plain path", uri: "/tmp/out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnknownTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTarget_KeyAndURI(t *testing.T) {
	target := Target{Scheme: "s3", Bucket: "gaa-data", Prefix: "aggregates"}
	assert.Equal(t, "aggregates/departments.json", target.Key("/tmp/out/departments.json"))
	assert.Equal(t, "s3://gaa-data/aggregates/departments.json", target.URI("/tmp/out/departments.json"))

	root := Target{Scheme: "gs", Bucket: "gaa-data"}
	assert.Equal(t, "gs://gaa-data/agencies.yaml", root.URI("agencies.yaml"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("departments.json"))
	assert.Equal(t, "text/csv", contentType("objects.CSV"))
	assert.Equal(t, "application/pdf", contentType("gaa_summary.pdf"))
	assert.Equal(t, "application/octet-stream", contentType("blob.unknownext"))
}

func TestUploadAll_PreservesOrderAndLimit(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
		files = append(files, p)
	}

	var inFlight, peak int32
	uris, err := uploadAll(context.Background(), files, 2, func(ctx context.Context, file string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "mem://" + filepath.Base(file), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem://a.json", "mem://b.json", "mem://c.json", "mem://d.json"}, uris)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestUploadAll_Error(t *testing.T) {
	boom := errors.New("denied")
	_, err := uploadAll(context.Background(), []string{"x.json"}, 1, func(ctx context.Context, file string) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}
