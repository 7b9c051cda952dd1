package userservice

import (
	"context"
	"database/sql"
)

func (m *UserModel) addUserPermission(tx *sql.Tx, ctx context.Context, id int, permissions ...Permission) error {
	for _, p := range permissions {
		_, err := tx.ExecContext(ctx, "INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)", id, p)
		if err != nil {
			return err
		}
	}

	return nil
}
