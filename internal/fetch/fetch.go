// Package fetch loads attachment bytes from a storage locator, which is
// either a local filesystem path or an http(s) URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Loader resolves a storage locator to its bytes.
type Loader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// StorageLoader is the default Loader.
type StorageLoader struct {
	httpClient *http.Client
	maxBytes   int64
}

// DefaultMaxBytes caps a single attachment fetch. Work-order PDFs are
// typically well under a megabyte; anything larger is almost certainly not
// worth feeding to the model.
const DefaultMaxBytes = 25 << 20

func NewStorageLoader(client *http.Client) *StorageLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &StorageLoader{httpClient: client, maxBytes: DefaultMaxBytes}
}

func (l *StorageLoader) Load(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return l.loadHTTP(ctx, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", location, err)
	}
	return data, nil
}

func (l *StorageLoader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch attachment %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", url, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("attachment %s exceeds %d bytes", url, l.maxBytes)
	}
	return data, nil
}
