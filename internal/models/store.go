package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Download failure classes. Connectivity problems are ErrNetwork; disk
// problems (permissions, space) are ErrStorage.
var (
	ErrNetwork = errors.New("model download failed")
	ErrStorage = errors.New("model storage failed")
)

// Progress reports download state after each received chunk. Percent is
// -1 when the server did not send a Content-Length.
type Progress struct {
	Percent    float64
	Downloaded int64
	Total      int64
}

// ProgressFunc observes download progress.
type ProgressFunc func(Progress)

// Store checks presence of model assets on disk and fetches missing
// ones. Presence is re-checked from the filesystem on every query so it
// never goes stale across process restarts.
type Store struct {
	registry *Registry
	client   *http.Client
	group    singleflight.Group
	log      *zap.SugaredLogger
}

// NewStore creates a store over the given registry. client may be nil,
// in which case http.DefaultClient is used.
func NewStore(registry *Registry, client *http.Client, log *zap.SugaredLogger) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{registry: registry, client: client, log: log}
}

// Registry exposes the fixed model registry.
func (s *Store) Registry() *Registry {
	return s.registry
}

// IsPresent reports whether the named model exists locally. Any stat
// error counts as absent.
func (s *Store) IsPresent(name string) bool {
	d, err := s.registry.Lookup(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(d.LocalPath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// AnyPresent reports whether at least one registered model exists
// locally.
func (s *Store) AnyPresent() bool {
	for _, name := range s.registry.Names() {
		if s.IsPresent(name) {
			return true
		}
	}
	return false
}

// Download streams the named model to its local path, reporting progress
// after each received chunk. Concurrent downloads of the same name are
// collapsed into one in-flight request; the extra callers wait for it.
// The file is written to a temp path and renamed on success so a failed
// download never leaves a partial file at the canonical path.
func (s *Store) Download(ctx context.Context, name string, onProgress ProgressFunc) error {
	d, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}

	_, err, _ = s.group.Do(name, func() (any, error) {
		return nil, s.download(ctx, d, onProgress)
	})
	return err
}

func (s *Store) download(ctx context.Context, d Descriptor, onProgress ProgressFunc) error {
	s.log.Infow("downloading model", "name", d.Name, "url", d.URL)

	if err := os.MkdirAll(filepath.Dir(d.LocalPath), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w: %v", ErrStorage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w: %v", ErrNetwork, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w: %v", d.URL, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d: %w", d.URL, resp.StatusCode, ErrNetwork)
	}

	tmpPath := d.LocalPath + ".part"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %s: %w: %v", tmpPath, ErrStorage, err)
	}

	total := resp.ContentLength // -1 when the server omits Content-Length
	var downloaded int64
	buf := make([]byte, 32*1024)

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := tmp.Write(buf[:n]); err != nil {
				cleanup()
				return fmt.Errorf("write model data: %w: %v", ErrStorage, err)
			}
			downloaded += int64(n)
			if onProgress != nil {
				p := Progress{Percent: -1, Downloaded: downloaded, Total: total}
				if total > 0 {
					p.Percent = float64(downloaded) / float64(total) * 100
				}
				onProgress(p)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			cleanup()
			return fmt.Errorf("read model data: %w: %v", ErrNetwork, readErr)
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w: %v", tmpPath, ErrStorage, err)
	}
	if err := os.Rename(tmpPath, d.LocalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %w: %v", d.LocalPath, ErrStorage, err)
	}

	s.log.Infow("model downloaded", "name", d.Name, "bytes", downloaded)
	return nil
}
