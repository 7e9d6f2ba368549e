package providers

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"siegemap/internal/render"
	"siegemap/internal/server"
	"siegemap/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the sqlite database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*server.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	st, err := store.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	log.Info("Database opened", "path", cfg.DBPath)
	return &StoreHandle{Store: st}, nil
}

// CatalogHandle owns the monster catalog and its file watcher.
type CatalogHandle struct {
	*render.Catalog
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideCatalog loads the monster catalog and reloads it on change. A
// missing catalog file leaves the catalog empty: names then render as typed.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*server.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	catalog, err := render.LoadCatalog(cfg.MonsterCatalog)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn("Monster catalog not found, using an empty catalog", "path", cfg.MonsterCatalog)
		return &CatalogHandle{Catalog: render.NewCatalog(nil), cancel: cancel}, nil
	case err != nil:
		cancel()
		return nil, err
	}

	if err := catalog.Watch(ctx, cfg.MonsterCatalog, log); err != nil {
		log.Warn("Catalog hot reload disabled", "error", err)
	}
	log.Info("Monster catalog loaded", "path", cfg.MonsterCatalog, "monsters", catalog.Len())
	return &CatalogHandle{Catalog: catalog, cancel: cancel}, nil
}
