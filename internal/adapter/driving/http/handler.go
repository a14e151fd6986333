// Package httphandler is the JSON API driving adapter for the vault.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/orgvault/internal/application"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// CookieOptions controls the session cookie issued on login.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	vault  *application.VaultService
	cookie CookieOptions
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(vault *application.VaultService, cookie CookieOptions, logger *slog.Logger) *Handler {
	return &Handler{
		vault:  vault,
		cookie: cookie,
		logger: logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("GET /api/check-auth", h.CheckAuth)
	mux.HandleFunc("GET /api/orgs", h.ListOrgs)
	mux.HandleFunc("POST /api/orgs", h.CreateOrg)
	mux.HandleFunc("GET /api/orgs/{id}/creds", h.GetCredentials)
	mux.HandleFunc("PUT /api/orgs/{id}", h.UpdateOrg)
	mux.HandleFunc("DELETE /api/orgs/{id}", h.DeleteOrg)
	mux.HandleFunc("GET /api/health", h.Health)
}

// Login exchanges the admin password for a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issued, err := h.vault.Login(r.Context(), req.Password)
	if err != nil {
		h.handleError(w, r, "login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    issued.Token,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// CheckAuth reports whether the caller holds a live admin session.
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthStatusResponse{
		Authenticated: h.vault.IsAdmin(r.Context(), SessionToken(r)),
	})
}

// ListOrgs returns all orgs with decrypted usernames and no passwords.
func (h *Handler) ListOrgs(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.vault.ListOrgs(r.Context(), SessionToken(r))
	if err != nil {
		h.handleError(w, r, "list orgs", err)
		return
	}

	resp := make([]OrgResponse, 0, len(orgs))
	for _, o := range orgs {
		resp = append(resp, toOrgResponse(o))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCredentials returns the decrypted credentials of one org.
func (h *Handler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	creds, err := h.vault.GetCredentials(r.Context(), SessionToken(r), id)
	if err != nil {
		h.handleError(w, r, "get credentials", err, "org_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialsResponse(creds))
}

// CreateOrg stores a new org.
func (h *Handler) CreateOrg(w http.ResponseWriter, r *http.Request) {
	var req CreateOrgRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// Authorization is reported ahead of body problems.
		if !h.vault.IsAdmin(r.Context(), SessionToken(r)) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.vault.CreateOrg(r.Context(), SessionToken(r), application.CreateOrgInput{
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		Username:    req.Username,
		Password:    req.Password,
	})
	if err != nil {
		h.handleError(w, r, "create org", err)
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: id})
}

// UpdateOrg replaces the credentials of an existing org.
func (h *Handler) UpdateOrg(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateOrgRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if !h.vault.IsAdmin(r.Context(), SessionToken(r)) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.vault.UpdateOrg(r.Context(), SessionToken(r), id, application.UpdateOrgInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, r, "update org", err, "org_id", id)
		return
	}

	writeJSON(w, http.StatusOK, UpdateOrgResponse{Success: true, Updated: toOrgResponse(updated)})
}

// DeleteOrg permanently removes an org.
func (h *Handler) DeleteOrg(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.vault.DeleteOrg(r.Context(), SessionToken(r), id); err != nil {
		h.handleError(w, r, "delete org", err, "org_id", id)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// StatusForError maps a vault error to its HTTP status code.
func StatusForError(err error) int {
	var verr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, driven.ErrOrgNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the response for err. Only 500s are logged; their
// detail stays in the log and the client gets a generic message.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...any) {
	status := StatusForError(err)
	switch status {
	case http.StatusUnauthorized:
		writeError(w, status, "Unauthorized")
	case http.StatusForbidden:
		writeError(w, status, "Forbidden")
	case http.StatusNotFound:
		writeError(w, status, "Org not found")
	case http.StatusBadRequest:
		var verr *application.ValidationError
		errors.As(err, &verr)
		writeJSON(w, status, errorResponse{Error: "validation failed", Fields: verr.Problems})
	default:
		h.logger.Error("request failed",
			append([]any{"op", op, "path", r.URL.Path, "error", err}, attrs...)...,
		)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
