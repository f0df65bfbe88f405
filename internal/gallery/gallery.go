// Package gallery writes revealed illustrations to disk.
package gallery

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/pictoword/internal/imagegen"
)

// Gallery saves every image of a shown result as PNG. It is safe for concurrent use.
type Gallery struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	last  imagegen.Result
	paths []string
	err   error
}

// New returns a gallery writing into dir.
func New(dir string) *Gallery {
	return &Gallery{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (g *Gallery) Dir() string {
	return g.dir
}

// Show saves res and remembers the written paths.
func (g *Gallery) Show(res imagegen.Result) {
	paths, err := g.Save(context.Background(), res)
	if err != nil {
		log.Error().Err(err).Str("dir", g.dir).Msg("Failed to save illustration")
	} else {
		log.Info().Strs("paths", paths).Str("outcome", res.Outcome.String()).Msg("Saved illustration")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = res
	g.paths = paths
	g.err = err
}

// Clear forgets the last shown result. Files stay on disk.
func (g *Gallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = imagegen.Result{}
	g.paths = nil
	g.err = nil
}

// Last returns the last shown result, its file paths and the save error, if any.
func (g *Gallery) Last() (imagegen.Result, []string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, append([]string(nil), g.paths...), g.err
}

// Save writes the images of res concurrently and returns their paths in order.
func (g *Gallery) Save(ctx context.Context, res imagegen.Result) ([]string, error) {
	if len(res.Images) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create gallery dir: %w", err)
	}
	stamp := g.now().Format("20060102-150405")
	id := res.RequestID
	if id == "" {
		id = "local"
	}

	paths := make([]string, len(res.Images))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, img := range res.Images {
		path := filepath.Join(g.dir, fmt.Sprintf("%s-%s-%d.png", stamp, id, i+1))
		paths[i] = path
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return writePNG(path, img)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writePNG(path string, img imagegen.Image) error {
	data := img.Data
	if img.Format != "png" || len(data) == 0 {
		if img.Image == nil {
			return fmt.Errorf("image for %s has no pixels", filepath.Base(path))
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img.Image); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
