package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/lightboxpreload/cmd/gallery/internal/viewmodels"
	"github.com/adampresley/lightboxpreload/pkg/models"
	"github.com/google/uuid"
)

/*
newViewerSessionMiddleware makes sure every request carries a viewer
session. Browsers without one are issued a new id in the session cookie.
*/
func newViewerSessionMiddleware(sessionService sessions.Session[*models.ViewerSession], excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err           error
				viewerSession *models.ViewerSession
			)

			path := r.URL.Path

			/*
			 * If this path is excluded, keep going.
			 */
			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if viewerSession, err = sessionService.Get(r); err != nil || viewerSession == nil || viewerSession.ID == "" {
				viewerSession = &models.ViewerSession{ID: uuid.NewString()}

				if err = sessionService.Set(r, viewerSession); err != nil {
					slog.Error("error setting viewer session", "error", err)
				} else if err = sessionService.Save(w, r); err != nil {
					slog.Error("error saving viewer session", "error", err)
				}
			}

			ctx := context.WithValue(r.Context(), viewmodels.ViewerSessionContextKey, viewerSession)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
