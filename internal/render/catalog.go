package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Monster is one entry of the local monster catalog.
type Monster struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ImageFilename string `yaml:"image_filename"`
}

type catalogFile struct {
	Monsters []Monster `yaml:"monsters"`
}

type catalogIndex struct {
	byID   map[string]Monster
	byName map[string]Monster
}

// Catalog maps the raw monster strings stored on defenses (an opaque id or a
// name) to display labels and remote image filenames. It can be swapped
// atomically while readers use it.
type Catalog struct {
	idx atomic.Pointer[catalogIndex]
}

// NewCatalog builds a catalog from monsters.
func NewCatalog(monsters []Monster) *Catalog {
	c := &Catalog{}
	c.replace(monsters)
	return c
}

// ParseCatalog reads a YAML document of the form `monsters: [{id, name, image_filename}]`.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	monsters, err := decodeCatalog(r)
	if err != nil {
		return nil, err
	}
	return NewCatalog(monsters), nil
}

// LoadCatalog reads the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster catalog: %w", err)
	}
	return ParseCatalog(bytes.NewReader(data))
}

func decodeCatalog(r io.Reader) ([]Monster, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode monster catalog: %w", err)
	}
	return file.Monsters, nil
}

func (c *Catalog) replace(monsters []Monster) {
	idx := &catalogIndex{
		byID:   make(map[string]Monster, len(monsters)),
		byName: make(map[string]Monster, len(monsters)),
	}
	for _, m := range monsters {
		if m.ID != "" {
			idx.byID[m.ID] = m
		}
		if m.Name != "" {
			idx.byName[NormalizeName(m.Name)] = m
		}
	}
	c.idx.Store(idx)
}

// Len returns the number of monsters with an id.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.idx.Load().byID)
}

// Lookup finds a monster by id, then by normalized name.
func (c *Catalog) Lookup(raw string) (Monster, bool) {
	if c == nil || raw == "" {
		return Monster{}, false
	}
	idx := c.idx.Load()
	if m, ok := idx.byID[raw]; ok {
		return m, true
	}
	m, ok := idx.byName[NormalizeName(raw)]
	return m, ok
}

// DisplayName returns the catalog label for raw, or raw itself.
func (c *Catalog) DisplayName(raw string) string {
	if m, ok := c.Lookup(raw); ok && m.Name != "" {
		return m.Name
	}
	return raw
}

// Watch reloads the catalog whenever the file at path is written or
// replaced, until ctx is done. A file that fails to parse keeps the
// previous contents.
func (c *Catalog) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	// Watch the directory: editors replace files rather than writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch catalog dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				c.reload(path, logger)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watcher", slog.String("error", werr.Error()))
			}
		}
	}()
	return nil
}

func (c *Catalog) reload(path string, logger *slog.Logger) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("reload monster catalog", slog.String("error", err.Error()))
		return
	}
	defer f.Close()

	monsters, err := decodeCatalog(f)
	if err != nil {
		logger.Warn("reload monster catalog", slog.String("error", err.Error()))
		return
	}
	c.replace(monsters)
	logger.Info("monster catalog reloaded", slog.Int("monsters", len(monsters)))
}
