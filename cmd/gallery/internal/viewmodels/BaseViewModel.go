package viewmodels

import (
	"net/http"

	"github.com/adampresley/lightboxpreload/pkg/models"
)

const (
	ViewerSessionContextKey = "viewerSession"
)

type BaseViewModel struct {
	Message string `json:"message,omitempty"`
	IsError bool   `json:"isError"`
}

func GetViewerSessionFromContext(r *http.Request) *models.ViewerSession {
	if result, ok := r.Context().Value(ViewerSessionContextKey).(*models.ViewerSession); ok {
		return result
	}

	return &models.ViewerSession{}
}
