package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Bundle describes a cached hymnal bundle.
type Bundle struct {
	Path     string
	Filename string
	Cached   bool
}

// FetchBundle downloads a hymnal JSON bundle into cacheDir, reusing a
// previously downloaded copy when one exists.
func FetchBundle(ctx context.Context, bundleURL, cacheDir string) (Bundle, error) {
	if cacheDir == "" {
		return Bundle{}, fmt.Errorf("cache directory is required")
	}
	filename, err := bundleFilename(bundleURL)
	if err != nil {
		return Bundle{}, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Bundle{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	destPath := filepath.Join(cacheDir, filename)
	if _, err := os.Stat(destPath); err == nil {
		return Bundle{Path: destPath, Filename: filename, Cached: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Bundle{}, fmt.Errorf("failed to stat cached bundle: %w", err)
	}

	tmpFile, err := os.CreateTemp(cacheDir, "bundle-*.json")
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to create temp bundle: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, bundleURL)
	if err != nil {
		return Bundle{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Bundle{}, fmt.Errorf("unexpected bundle status: %s", resp.Status)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return Bundle{}, fmt.Errorf("failed to download bundle: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Bundle{}, fmt.Errorf("failed to close temp bundle: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Bundle{}, fmt.Errorf("failed to move bundle into cache: %w", err)
	}

	return Bundle{Path: destPath, Filename: filename, Cached: false}, nil
}

func bundleFilename(bundleURL string) (string, error) {
	parsed, err := url.Parse(bundleURL)
	if err != nil {
		return "", fmt.Errorf("invalid bundle URL: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("bundle URL has no file name: %s", bundleURL)
	}
	return name, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
