// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the landing page at / to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", NewRootHandler().HandleRoot)
}

// RootHandler handles root path requests.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// HandleRoot handles GET / and serves index.html.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
