package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// CreateOrgInput is the plaintext input for VaultService.CreateOrg.
type CreateOrgInput struct {
	Name        string
	EndpointURL string
	Username    string
	Password    string
}

// UpdateOrgInput is the plaintext input for VaultService.UpdateOrg.
type UpdateOrgInput struct {
	Username string
	Password string
}

// VaultService is the orchestrating core. Every gated operation checks the
// caller's session before touching the store, and secrets cross the store
// boundary only as cipher envelopes.
type VaultService struct {
	orgs                driven.OrgStore
	cipher              driven.Cipher
	gate                *SessionGate
	launchRequiresAdmin bool
	logger              *slog.Logger
}

// NewVaultService creates a VaultService. When launchRequiresAdmin is false,
// Launch serves decrypted credentials to any caller that knows an org ID.
func NewVaultService(
	orgs driven.OrgStore,
	cipher driven.Cipher,
	gate *SessionGate,
	launchRequiresAdmin bool,
	logger *slog.Logger,
) *VaultService {
	return &VaultService{
		orgs:                orgs,
		cipher:              cipher,
		gate:                gate,
		launchRequiresAdmin: launchRequiresAdmin,
		logger:              logger,
	}
}

// Login exchanges the admin secret for a session token.
func (s *VaultService) Login(ctx context.Context, secret string) (model.IssuedSession, error) {
	issued, err := s.gate.Authenticate(ctx, secret)
	if err != nil {
		return model.IssuedSession{}, err
	}
	s.logger.Info("admin session issued", "expires_at", issued.ExpiresAt)
	return issued, nil
}

// IsAdmin reports whether token belongs to a live admin session.
func (s *VaultService) IsAdmin(ctx context.Context, token string) bool {
	return s.gate.Check(ctx, token)
}

// ListOrgs returns every org with its username decrypted. Passwords are
// neither loaded nor decrypted.
func (s *VaultService) ListOrgs(ctx context.Context, token string) ([]model.OrgListing, error) {
	if !s.gate.Check(ctx, token) {
		return nil, ErrForbidden
	}

	summaries, err := s.orgs.List(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]model.OrgListing, 0, len(summaries))
	for _, o := range summaries {
		username, err := s.cipher.Decrypt(o.UsernameCiphertext)
		if err != nil {
			return nil, fmt.Errorf("decrypt username for org %q: %w", o.ID, err)
		}
		listings = append(listings, model.OrgListing{
			ID:          o.ID,
			Name:        o.Name,
			EndpointURL: o.EndpointURL,
			Username:    username,
			Environment: model.ClassifyEndpoint(o.EndpointURL),
		})
	}
	return listings, nil
}

// GetCredentials returns the decrypted username and password of one org.
func (s *VaultService) GetCredentials(ctx context.Context, token, id string) (model.Credentials, error) {
	if !s.gate.Check(ctx, token) {
		return model.Credentials{}, ErrForbidden
	}
	return s.credentials(ctx, id)
}

// CreateOrg validates input, encrypts both secrets and persists a new org.
// Nothing is encrypted or stored when validation fails.
func (s *VaultService) CreateOrg(ctx context.Context, token string, in CreateOrgInput) (string, error) {
	if !s.gate.Check(ctx, token) {
		return "", ErrForbidden
	}

	var verr ValidationError
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.add("name", "is required")
	}
	endpoint := strings.TrimSpace(in.EndpointURL)
	if problem := checkEndpointURL(endpoint); problem != "" {
		verr.add("endpoint_url", problem)
	}
	checkSecrets(&verr, in.Username, in.Password)
	if err := verr.errOrNil(); err != nil {
		return "", err
	}

	usernameCT, passwordCT, err := s.sealPair(in.Username, in.Password)
	if err != nil {
		return "", err
	}

	id, err := s.orgs.Create(ctx, model.NewOrg{
		Name:               name,
		EndpointURL:        endpoint,
		UsernameCiphertext: usernameCT,
		PasswordCiphertext: passwordCT,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("org created", "org_id", id, "environment", model.ClassifyEndpoint(endpoint))
	return id, nil
}

// UpdateOrg re-encrypts and replaces both secrets of an existing org. Name
// and endpoint URL are left as they are. The returned listing carries the new
// username but never the password.
func (s *VaultService) UpdateOrg(ctx context.Context, token, id string, in UpdateOrgInput) (model.OrgListing, error) {
	if !s.gate.Check(ctx, token) {
		return model.OrgListing{}, ErrForbidden
	}

	var verr ValidationError
	checkSecrets(&verr, in.Username, in.Password)
	if err := verr.errOrNil(); err != nil {
		return model.OrgListing{}, err
	}

	usernameCT, passwordCT, err := s.sealPair(in.Username, in.Password)
	if err != nil {
		return model.OrgListing{}, err
	}

	org, err := s.orgs.Update(ctx, id, usernameCT, passwordCT)
	if err != nil {
		return model.OrgListing{}, err
	}

	s.logger.Info("org credentials updated", "org_id", id)
	return model.OrgListing{
		ID:          org.ID,
		Name:        org.Name,
		EndpointURL: org.EndpointURL,
		Username:    in.Username,
		Environment: model.ClassifyEndpoint(org.EndpointURL),
	}, nil
}

// DeleteOrg permanently removes an org.
func (s *VaultService) DeleteOrg(ctx context.Context, token, id string) error {
	if !s.gate.Check(ctx, token) {
		return ErrForbidden
	}

	if err := s.orgs.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("org deleted", "org_id", id)
	return nil
}

// Launch builds an auto-submitting login form for an org. The session is only
// checked when the service was constructed with launchRequiresAdmin.
func (s *VaultService) Launch(ctx context.Context, token, id string) (model.LaunchForm, error) {
	if s.launchRequiresAdmin && !s.gate.Check(ctx, token) {
		return model.LaunchForm{}, ErrForbidden
	}

	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return model.LaunchForm{}, err
	}
	creds, err := s.open(org)
	if err != nil {
		return model.LaunchForm{}, err
	}

	return model.LaunchForm{
		OrgName: org.Name,
		Action:  creds.EndpointURL,
		Fields: []model.LaunchField{
			{Name: "username", Value: creds.Username},
			{Name: "password", Value: creds.Password},
		},
	}, nil
}

func (s *VaultService) credentials(ctx context.Context, id string) (model.Credentials, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		return model.Credentials{}, err
	}
	return s.open(org)
}

func (s *VaultService) open(org *model.Org) (model.Credentials, error) {
	username, err := s.cipher.Decrypt(org.UsernameCiphertext)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("decrypt username for org %q: %w", org.ID, err)
	}
	password, err := s.cipher.Decrypt(org.PasswordCiphertext)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("decrypt password for org %q: %w", org.ID, err)
	}
	return model.Credentials{
		Username:    username,
		Password:    password,
		EndpointURL: org.EndpointURL,
	}, nil
}

func (s *VaultService) sealPair(username, password string) (string, string, error) {
	usernameCT, err := s.cipher.Encrypt(username)
	if err != nil {
		return "", "", fmt.Errorf("encrypt username: %w", err)
	}
	passwordCT, err := s.cipher.Encrypt(password)
	if err != nil {
		return "", "", fmt.Errorf("encrypt password: %w", err)
	}
	return usernameCT, passwordCT, nil
}

// checkSecrets rejects empty or whitespace-only secrets. Accepted values are
// stored verbatim, surrounding whitespace included.
func checkSecrets(verr *ValidationError, username, password string) {
	if strings.TrimSpace(username) == "" {
		verr.add("username", "is required")
	}
	if strings.TrimSpace(password) == "" {
		verr.add("password", "is required")
	}
}

// checkEndpointURL returns a problem description, or "" if raw is an
// absolute http(s) URL with a host.
func checkEndpointURL(raw string) string {
	if raw == "" {
		return "is required"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "must be an absolute URL"
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "must use http or https"
	}
	return ""
}
