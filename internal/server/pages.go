package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"siegemap/internal/board"
	"siegemap/internal/geometry"
	"siegemap/internal/render"
)

const (
	defaultViewportWidth  = 1280.0
	defaultViewportHeight = 800.0
)

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// handleMapPage renders a map as overlays on its image, or as the card list
// with ?view=list. Each request is its own view: it gets a fresh image cache
// and resolves every defense and user its towers reference.
func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mapName := chi.URLParam(r, "mapName")
	showNames := queryBool(r, "names")

	towers, err := s.store.ListTowers(ctx, mapName)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	res := s.resolver.ResolveTowers(ctx, towers)

	images := render.NewImageCache(render.ImageResolver{
		Ext:        s.cfg.MonsterImageExt,
		RemoteBase: s.cfg.RemoteImageBase,
		Catalog:    s.catalog,
	}).SkipUnavailable(s.missingLocalIcon)
	composer := board.NewComposer(render.NewRenderer(s.catalog, images))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.URL.Query().Get("view") == "list" {
		if err := s.pages.RenderList(w, composer.TowerList(mapName, towers, res, showNames)); err != nil {
			s.logger.Error("render list page", slog.String("map", mapName), slog.String("error", err.Error()))
		}
		return
	}

	natural, err := board.NaturalSizeFile(filepath.Join(s.cfg.UploadDir, filepath.Base(mapName)))
	if err != nil {
		s.logger.Warn("map image size", slog.String("map", mapName), slog.String("error", err.Error()))
	}
	vp := geometry.Viewport{
		Width:  queryFloat(r, "vw", defaultViewportWidth),
		Height: queryFloat(r, "vh", defaultViewportHeight),
		Mobile: queryBool(r, "mobile"),
	}
	gestures := geometry.NewBoard()
	gestures.SetEditing(queryBool(r, "edit"))

	mv := composer.MapView(mapName, "/uploads/"+mapName, natural, vp, towers, res, showNames, gestures)
	if err := s.pages.RenderMap(w, mv); err != nil {
		s.logger.Error("render map page", slog.String("map", mapName), slog.String("error", err.Error()))
	}
}

// missingLocalIcon reports a local icon that is not present under the upload
// directory, so the page links the remote image directly.
func (s *Server) missingLocalIcon(src render.ImageSource) bool {
	if src.Kind != render.SourceLocal {
		return false
	}
	rel, ok := strings.CutPrefix(src.URL, "/uploads/")
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(s.cfg.UploadDir, filepath.FromSlash(filepath.Clean("/"+rel))))
	return err != nil
}
