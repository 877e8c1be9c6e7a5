package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/solarops/solarops/internal/identity"
)

type solarClaims struct {
	jwt.RegisteredClaims
	Handle      string `json:"handle"`
	DisplayName string `json:"name,omitempty"`
	RoleLevel   string `json:"lvl"`
	Department  string `json:"dept"`
	Avatar      string `json:"avatar,omitempty"`
	TokenType   string `json:"type"`
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	signingKey         []byte
	issuer             string
	expiryHours        int
	refreshExpiryHours int
}

func NewTokenService(signingKey, issuer string, expiryHours, refreshExpiryHours int) *TokenService {
	return &TokenService{
		signingKey:         []byte(signingKey),
		issuer:             issuer,
		expiryHours:        expiryHours,
		refreshExpiryHours: refreshExpiryHours,
	}
}

func (s *TokenService) CreateAccessToken(id *identity.Identity) (string, error) {
	return s.createToken(id, TokenTypeAccess, s.expiryHours)
}

func (s *TokenService) CreateRefreshToken(id *identity.Identity) (string, error) {
	return s.createToken(id, TokenTypeRefresh, s.refreshExpiryHours)
}

// AccessTTL is the lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration {
	return time.Duration(s.expiryHours) * time.Hour
}

func (s *TokenService) createToken(id *identity.Identity, tokenType string, expiryHours int) (string, error) {
	if id == nil {
		return "", fmt.Errorf("%w: no identity", ErrTokenInvalid)
	}
	now := time.Now()

	claims := solarClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryHours) * time.Hour)),
		},
		Handle:      id.Handle,
		DisplayName: id.DisplayName,
		RoleLevel:   string(id.RoleLevel),
		Department:  string(id.Department),
		Avatar:      id.Avatar,
		TokenType:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateToken checks the signature, issuer and expiry, then rebuilds the
// identity. A token whose identity no longer validates is rejected.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &solarClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*solarClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	id := identity.Identity{
		ID:          claims.Subject,
		Handle:      claims.Handle,
		DisplayName: claims.DisplayName,
		RoleLevel:   identity.RoleLevel(claims.RoleLevel),
		Department:  identity.Department(claims.Department),
		Avatar:      claims.Avatar,
	}
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return &Claims{Identity: id, TokenType: claims.TokenType}, nil
}
