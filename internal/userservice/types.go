package userservice

import (
	"database/sql"
	"time"

	"github.com/writelyhq/writely/internal/common"
)

type tokenScope string

type Permission string
type Permissions []Permission

const (
	TokenScopeActivate tokenScope = "token:activate"
	TokenScopeAccess   tokenScope = "token:access"

	ActivationTokenTime time.Duration = 3 * 24 * time.Hour
	AccessTokenTime     time.Duration = 7 * 24 * time.Hour

	PermissionWritePost Permission = "post:write"
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m  *UserModel
	mb common.MessageProducer
	c  *common.Cache
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`

	Permissions Permissions `json:"permissions,omitempty"`
}

func (u *User) IsAnonymous() bool {
	return u.ID == 0
}

func (p Permissions) Include(code Permission) bool {
	for i := range p {
		if p[i] == code {
			return true
		}
	}
	return false
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type Token struct {
	Plain  string     `json:"token"`
	Hash   []byte     `json:"-"`
	UserID int        `json:"-"`
	Expiry time.Time  `json:"expiry"`
	Scope  tokenScope `json:"-"`
}
