package controllers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/carwashpos/backend/api/responses"
	pkgerrors "github.com/carwashpos/backend/pkg/errors"
	"github.com/carwashpos/backend/pkg/logger"
)

// POSPage serves index.html from the static directory.
func POSPage(staticDir string, logg *logger.Logger) http.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(index); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "pos page not installed"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stat pos page"))
			return
		}
		http.ServeFile(w, r, index)
	}
}

func StaticFiles(staticDir string) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
}

func NotFound(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	}
}
