package auth

import (
	"errors"

	"github.com/solarops/solarops/internal/identity"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is what a validated token asserts.
type Claims struct {
	Identity  identity.Identity
	TokenType string // "access" or "refresh"
}
