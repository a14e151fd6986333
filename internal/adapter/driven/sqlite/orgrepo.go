package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.OrgStore = (*OrgRepo)(nil)

// OrgRepo is the SQLite implementation of the OrgStore port interface.
// Credential columns hold cipher envelopes and are passed through untouched.
type OrgRepo struct {
	db  *DB
	now func() time.Time
}

// NewOrgRepo creates a new OrgRepo backed by the given DB.
func NewOrgRepo(db *DB) *OrgRepo {
	return &OrgRepo{db: db, now: time.Now}
}

// List returns all orgs ordered by name. The password column is not selected.
func (r *OrgRepo) List(ctx context.Context) ([]model.OrgSummary, error) {
	const query = `SELECT id, name, endpoint_url, username_ciphertext FROM orgs ORDER BY name, id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orgs: %w", err)
	}
	defer rows.Close()

	orgs := []model.OrgSummary{}
	for rows.Next() {
		var o model.OrgSummary
		if err := rows.Scan(&o.ID, &o.Name, &o.EndpointURL, &o.UsernameCiphertext); err != nil {
			return nil, fmt.Errorf("scan org: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orgs: %w", err)
	}

	return orgs, nil
}

// Get returns the org with the given ID, or driven.ErrOrgNotFound.
func (r *OrgRepo) Get(ctx context.Context, id string) (*model.Org, error) {
	return r.get(ctx, r.db.Reader, id)
}

// Create inserts a new org under a freshly generated UUID.
func (r *OrgRepo) Create(ctx context.Context, org model.NewOrg) (string, error) {
	const query = `
		INSERT INTO orgs (id, name, endpoint_url, username_ciphertext, password_ciphertext, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	now := formatTime(r.now())

	_, err := r.db.Writer.ExecContext(ctx, query,
		id, org.Name, org.EndpointURL, org.UsernameCiphertext, org.PasswordCiphertext, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("create org %q: %w", org.Name, err)
	}
	return id, nil
}

// Update replaces both credential ciphertexts and returns the updated row.
func (r *OrgRepo) Update(ctx context.Context, id, usernameCiphertext, passwordCiphertext string) (*model.Org, error) {
	const query = `
		UPDATE orgs
		SET username_ciphertext = ?, password_ciphertext = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		usernameCiphertext, passwordCiphertext, formatTime(r.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update org %q: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return nil, driven.ErrOrgNotFound
	}

	// Read back through the writer so the result reflects this update even
	// if a reader connection has an older snapshot.
	return r.get(ctx, r.db.Writer, id)
}

// Delete removes the org permanently.
func (r *OrgRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM orgs WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete org %q: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return driven.ErrOrgNotFound
	}
	return nil
}

func (r *OrgRepo) get(ctx context.Context, conn *sql.DB, id string) (*model.Org, error) {
	const query = `
		SELECT id, name, endpoint_url, username_ciphertext, password_ciphertext, created_at, updated_at
		FROM orgs WHERE id = ?`

	var o model.Org
	var createdAt, updatedAt string
	err := conn.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.EndpointURL, &o.UsernameCiphertext, &o.PasswordCiphertext, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrOrgNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get org %q: %w", id, err)
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for org %q: %w", id, err)
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for org %q: %w", id, err)
	}

	return &o, nil
}
