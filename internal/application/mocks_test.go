package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockOrgStore struct {
	mu      sync.Mutex
	orgs    map[string]model.Org
	nextID  int
	creates int
	err     error
}

func newMockOrgStore() *mockOrgStore {
	return &mockOrgStore{orgs: make(map[string]model.Org)}
}

func (m *mockOrgStore) List(_ context.Context) ([]model.OrgSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.OrgSummary, 0, len(m.orgs))
	for _, o := range m.orgs {
		out = append(out, model.OrgSummary{
			ID: o.ID, Name: o.Name, EndpointURL: o.EndpointURL, UsernameCiphertext: o.UsernameCiphertext,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockOrgStore) Get(_ context.Context, id string) (*model.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orgs[id]
	if !ok {
		return nil, driven.ErrOrgNotFound
	}
	return &o, nil
}

func (m *mockOrgStore) Create(_ context.Context, org model.NewOrg) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.creates++
	m.nextID++
	id := fmt.Sprintf("org-%d", m.nextID)
	m.orgs[id] = model.Org{
		ID:                 id,
		Name:               org.Name,
		EndpointURL:        org.EndpointURL,
		UsernameCiphertext: org.UsernameCiphertext,
		PasswordCiphertext: org.PasswordCiphertext,
	}
	return id, nil
}

func (m *mockOrgStore) Update(_ context.Context, id, usernameCT, passwordCT string) (*model.Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orgs[id]
	if !ok {
		return nil, driven.ErrOrgNotFound
	}
	o.UsernameCiphertext = usernameCT
	o.PasswordCiphertext = passwordCT
	m.orgs[id] = o
	return &o, nil
}

func (m *mockOrgStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.orgs[id]; !ok {
		return driven.ErrOrgNotFound
	}
	delete(m.orgs, id)
	return nil
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	getErr   error
	saveErr  error
	reapErr  error
	reaps    int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]model.Session)}
}

func (m *mockSessionStore) Save(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[s.TokenHash] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, hash string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[hash]
	if !ok {
		return nil, driven.ErrSessionNotFound
	}
	return &s, nil
}

func (m *mockSessionStore) Delete(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, hash)
	return nil
}

func (m *mockSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reaps++
	if m.reapErr != nil {
		return 0, m.reapErr
	}
	var n int64
	for hash, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, hash)
			n++
		}
	}
	return n, nil
}

// fakeCipher is a reversible, non-cryptographic stand-in that counts calls.
type fakeCipher struct {
	mu         sync.Mutex
	encrypts   int
	decryptErr error
}

const fakePrefix = "sealed:"

func (c *fakeCipher) Encrypt(plaintext string) (string, error) {
	c.mu.Lock()
	c.encrypts++
	n := c.encrypts
	c.mu.Unlock()
	return fmt.Sprintf("%s%d:%s", fakePrefix, n, base64.StdEncoding.EncodeToString([]byte(plaintext))), nil
}

func (c *fakeCipher) Decrypt(envelope string) (string, error) {
	if c.decryptErr != nil {
		return "", c.decryptErr
	}
	rest, ok := strings.CutPrefix(envelope, fakePrefix)
	if !ok {
		return "", driven.ErrFormat
	}
	_, enc, ok := strings.Cut(rest, ":")
	if !ok {
		return "", driven.ErrFormat
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", driven.ErrFormat
	}
	return string(b), nil
}

// --- Test helpers ---

const (
	testAdminSecret   = "correct horse battery staple"
	testSessionSecret = "session-signing-secret"
)

var testNow = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGate(t *testing.T, store driven.SessionStore) *SessionGate {
	t.Helper()
	gate, err := NewSessionGate(store, testAdminSecret, testSessionSecret, 0, discardLogger())
	require.NoError(t, err)
	gate.now = func() time.Time { return testNow }
	return gate
}

type vaultFixture struct {
	svc      *VaultService
	orgs     *mockOrgStore
	sessions *mockSessionStore
	cipher   *fakeCipher
	gate     *SessionGate
	token    string
}

func newVaultFixture(t *testing.T, launchRequiresAdmin bool) *vaultFixture {
	t.Helper()
	f := &vaultFixture{
		orgs:     newMockOrgStore(),
		sessions: newMockSessionStore(),
		cipher:   &fakeCipher{},
	}
	f.gate = newTestGate(t, f.sessions)
	f.svc = NewVaultService(f.orgs, f.cipher, f.gate, launchRequiresAdmin, discardLogger())

	issued, err := f.svc.Login(context.Background(), testAdminSecret)
	require.NoError(t, err)
	f.token = issued.Token
	return f
}
