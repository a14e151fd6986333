package model

import (
	"strings"
	"time"
)

// Org is a stored third-party endpoint together with its encrypted login
// credentials. Username and password are only ever held as cipher envelopes.
type Org struct {
	ID                 string
	Name               string
	EndpointURL        string
	UsernameCiphertext string
	PasswordCiphertext string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrgSummary is the bulk-listing projection of an Org. It carries no password
// material at all.
type OrgSummary struct {
	ID                 string
	Name               string
	EndpointURL        string
	UsernameCiphertext string
}

// NewOrg holds the already-encrypted fields needed to persist a new Org.
// The store assigns the ID.
type NewOrg struct {
	Name               string
	EndpointURL        string
	UsernameCiphertext string
	PasswordCiphertext string
}

// OrgListing is an OrgSummary with the username decrypted for display.
type OrgListing struct {
	ID          string
	Name        string
	EndpointURL string
	Username    string
	Environment Environment
}

// Credentials is the decrypted username/password pair for one org.
type Credentials struct {
	Username    string
	Password    string
	EndpointURL string
}

// Environment classifies an org endpoint as sandbox or production.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// sandboxMarker is the substring that marks an endpoint URL as a sandbox,
// e.g. https://test.salesforce.com. Any URL containing it is classified as
// sandbox, including production hosts that happen to contain it.
const sandboxMarker = "test"

// ClassifyEndpoint returns EnvironmentSandbox when endpointURL contains the
// sandbox marker and EnvironmentProduction otherwise.
func ClassifyEndpoint(endpointURL string) Environment {
	if strings.Contains(endpointURL, sandboxMarker) {
		return EnvironmentSandbox
	}
	return EnvironmentProduction
}
