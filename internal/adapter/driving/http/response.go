package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Fields is only set for
// validation failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LoginRequest is the JSON body for the login endpoint.
type LoginRequest struct {
	Password string `json:"password"`
}

// CreateOrgRequest is the JSON body for the create org endpoint.
type CreateOrgRequest struct {
	Name        string `json:"name"`
	EndpointURL string `json:"endpoint_url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

// UpdateOrgRequest is the JSON body for the update org endpoint.
type UpdateOrgRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OrgResponse is the JSON representation of an org in listings. It has no
// password field.
type OrgResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EndpointURL string `json:"endpoint_url"`
	Username    string `json:"username"`
	Environment string `json:"environment"`
}

// CredentialsResponse is the JSON representation of an org's decrypted credentials.
type CredentialsResponse struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	EndpointURL string `json:"endpoint_url"`
}

// OKResponse is returned by login and create.
type OKResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// SuccessResponse is returned by delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// UpdateOrgResponse is returned by update.
type UpdateOrgResponse struct {
	Success bool        `json:"success"`
	Updated OrgResponse `json:"updated"`
}

// AuthStatusResponse is returned by the check-auth endpoint.
type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toOrgResponse converts a domain OrgListing to its JSON representation.
func toOrgResponse(o model.OrgListing) OrgResponse {
	return OrgResponse{
		ID:          o.ID,
		Name:        o.Name,
		EndpointURL: o.EndpointURL,
		Username:    o.Username,
		Environment: string(o.Environment),
	}
}

// toCredentialsResponse converts domain Credentials to their JSON representation.
func toCredentialsResponse(c model.Credentials) CredentialsResponse {
	return CredentialsResponse{
		Username:    c.Username,
		Password:    c.Password,
		EndpointURL: c.EndpointURL,
	}
}
