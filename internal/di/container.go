// Package di provides dependency injection configuration for the siegemap server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"siegemap/internal/di/providers"
	"siegemap/internal/server"
)

// NewContainer creates the DI container with all providers registered.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Data
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly builds every service so configuration and storage errors
// surface at startup rather than on first request.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*server.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
