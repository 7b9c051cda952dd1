package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/writelyhq/writely/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("unauthorized access")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
		c:  c,
	}
}

// CreateUser creates a new user account and publishes a user.created
// event carrying the activation token.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*string, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Email:    email,
		Password: Password{Plain: password},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	token, err := s.m.createToken(ctx, u.ID, ActivationTokenTime, TokenScopeActivate)
	if err != nil {
		return nil, err
	}

	data := struct {
		Email string
		Token string
	}{
		Email: u.Email,
		Token: token.Plain,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, emailData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, err
	}

	return &token.Plain, nil
}

// ActivateUser activates a user account using the activation token,
// deletes the token, and grants the post:write permission.
func (s *UserService) ActivateUser(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashToken(token)

	user, err := s.m.getUserByToken(ctx, TokenScopeActivate, hash)
	if err != nil {
		return err
	}

	return common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		if err := s.m.activateUserAccount(tx, ctx, user.ID, user.Version); err != nil {
			return err
		}

		if err := s.m.deleteTokens(tx, ctx, user.ID, TokenScopeActivate); err != nil {
			return err
		}

		return s.m.addUserPermission(tx, ctx, user.ID, PermissionWritePost)
	})
}

// LoginUser verifies the credentials and issues a fresh access token,
// revoking any token issued earlier.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*Token, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAuthenticationFailure
	}

	token, err := newToken(user.ID, AccessTokenTime, TokenScopeAccess)
	if err != nil {
		return nil, err
	}

	err = common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		if err := s.m.deleteTokens(tx, ctx, user.ID, TokenScopeAccess); err != nil {
			return err
		}
		return s.m.insertToken(tx, ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// LogoutUser revokes the user's access tokens.
func (s *UserService) LogoutUser(ctx context.Context, userID int, token string) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := common.WithTx(ctx, s.m.db, func(tx *sql.Tx) error {
		return s.m.deleteTokens(tx, ctx, userID, TokenScopeAccess)
	})
	if err != nil {
		return err
	}

	if token != "" {
		s.c.Delete(common.CacheKeyUserByAccessToken(hashToken(token)))
	}

	return nil
}

// GetUserByAccessToken resolves a bearer token to its user.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if cached, ok := s.c.Get(common.CacheKeyUserByAccessToken(hash)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getUserByToken(ctx, TokenScopeAccess, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUserByAccessToken(hash), user)

	return user, nil
}

// EmailExists reports whether a user account with the email exists.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.emailExists(ctx, email)
}

// ListRecipientIDs returns the notification fan-out recipients for a
// publish event: every activated user except the author.
func (s *UserService) ListRecipientIDs(ctx context.Context, excludeUserID int) ([]int, error) {
	return s.m.listRecipientIDs(ctx, excludeUserID)
}

// ListRecipientEmails returns the email addresses of all activated
// users, used by the new-post mail consumer.
func (s *UserService) ListRecipientEmails(ctx context.Context) ([]string, error) {
	return s.m.listRecipientEmails(ctx)
}
