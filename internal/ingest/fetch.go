package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"smartbizmap.kr/internal/logging"
)

// maxSourceBytes bounds a single downloaded source file.
const maxSourceBytes = 256 << 20

// Fetcher returns the raw bytes of a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FileFetcher reads local files. Relative paths are resolved against BaseDir.
type FileFetcher struct {
	BaseDir string
}

func (f FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := location
	if !filepath.IsAbs(path) && f.BaseDir != "" {
		path = filepath.Join(f.BaseDir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading local file: %w", err)
	}
	return b, nil
}

// HTTPFetcher downloads sources over HTTP.
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading source: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logging.FromContext(ctx), "source_download_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading source: unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading source body: %w", err)
	}
	return b, nil
}

// AutoFetcher dispatches on the location: URLs go over HTTP, anything else
// is read from disk.
type AutoFetcher struct {
	File FileFetcher
	HTTP HTTPFetcher
}

func (f AutoFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if IsRemote(location) {
		return f.HTTP.Fetch(ctx, location)
	}
	return f.File.Fetch(ctx, location)
}
