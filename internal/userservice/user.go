package userservice

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(db *sql.DB) *UserModel {
	return &UserModel{db: db}
}

func (m *UserModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id`

	args := []any{
		u.Username,
		u.Email,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID)
	if err != nil {
		switch {
		case err.Error() == "pq: duplicate key value violates unique constraint \"users_username_key\"":
			return ErrDuplicateUsername
		case err.Error() == "pq: duplicate key value violates unique constraint \"users_email_key\"":
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

func (m *UserModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password, version
		FROM users
		WHERE username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.Password.hash, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *UserModel) activateUserAccount(tx *sql.Tx, ctx context.Context, id int, version int) error {
	query := `
		UPDATE users
		SET activated = true
		WHERE id = $1 AND version = $2`

	res, err := tx.ExecContext(ctx, query, id, version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		switch {
		case rows == 0:
			return ErrNotFound
		default:
			return errors.New("too many rows affected")
		}
	}

	return nil
}

func (m *UserModel) emailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

// listRecipientIDs returns the ids of all activated users except the
// excluded one, used as the fan-out recipient set on publish.
func (m *UserModel) listRecipientIDs(ctx context.Context, exclude int) ([]int, error) {
	query := `
		SELECT id
		FROM users
		WHERE activated = true AND id != $1
		ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query, exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// listRecipientEmails returns the email addresses for the new-post
// mail fan-out.
func (m *UserModel) listRecipientEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT email
		FROM users
		WHERE activated = true
		ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}
