// Package web implements the HTML driving adapter: the credential launch page.
package web

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/orgvault/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/orgvault/internal/application"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// TokenFunc extracts the caller's session token from a request.
type TokenFunc func(r *http.Request) string

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	vault     *application.VaultService
	tokenFrom TokenFunc
	rand      io.Reader
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, tokenFrom TokenFunc, logger *slog.Logger) *Handler {
	return &Handler{
		vault:     vault,
		tokenFrom: tokenFrom,
		rand:      rand.Reader,
		logger:    logger,
	}
}

// RegisterRoutes registers all web routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /launch/{id}", h.Launch)
}

// Launch renders the auto-submitting login form for one org.
func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	form, err := h.vault.Launch(r.Context(), h.tokenFrom(r), id)
	switch {
	case errors.Is(err, driven.ErrOrgNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	case errors.Is(err, application.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case err != nil:
		h.logger.Error("failed to prepare launch", "org_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	nonce, err := generateNonce(h.rand)
	if err != nil {
		h.logger.Error("failed to prepare launch", "org_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Security-Policy", launchCSP(form.Action, nonce))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pages.Launch(toLaunchPage(form, nonce)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render launch page", "org_id", id, "error", err)
	}
}

func generateNonce(r io.Reader) (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("generate script nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
