package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"time"
)

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newToken(userID int, ttl time.Duration, scope tokenScope) (*Token, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	token := &Token{
		Plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		UserID: userID,
		Expiry: time.Now().Add(ttl),
		Scope:  scope,
	}

	token.Hash = hashToken(token.Plain)

	return token, nil
}

func (m *UserModel) insertToken(tx *sql.Tx, ctx context.Context, token *Token) error {
	query := `
		INSERT INTO tokens (hash, user_id, expiry, scope)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.ExecContext(ctx, query, token.Hash, token.UserID, token.Expiry, string(token.Scope))
	return err
}

func (m *UserModel) createToken(ctx context.Context, userID int, ttl time.Duration, scope tokenScope) (*Token, error) {
	token, err := newToken(userID, ttl, scope)
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := m.insertToken(tx, ctx, token); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return token, nil
}

// deleteTokens drops every token a user holds for a scope. Deleting
// zero rows is not an error; logout and re-login are idempotent.
func (m *UserModel) deleteTokens(tx *sql.Tx, ctx context.Context, userID int, scope tokenScope) error {
	query := `
		DELETE FROM tokens
		WHERE user_id = $1 AND scope = $2`

	_, err := tx.ExecContext(ctx, query, userID, string(scope))
	return err
}

// getUserByToken resolves a token hash within a scope back to its user,
// permissions included.
func (m *UserModel) getUserByToken(ctx context.Context, scope tokenScope, hash []byte) (*User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.activated, u.version, p.permission
		FROM users u
		INNER JOIN tokens t ON u.id = t.user_id
		LEFT JOIN user_permissions p ON u.id = p.user_id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry > $3`

	rows, err := m.db.QueryContext(ctx, query, hash, string(scope), time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var u User
	for rows.Next() {
		var p sql.NullString
		err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Activated, &u.Version, &p)
		if err != nil {
			return nil, err
		}

		if p.Valid {
			u.Permissions = append(u.Permissions, Permission(p.String))
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if u.ID == 0 {
		return nil, ErrNotFound
	}

	return &u, nil
}
