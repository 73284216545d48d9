package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims of the access token.
type Claims struct {
	UserID uint `json:"userId"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}

// AccessTTL is the lifetime of an access token.
const AccessTTL = time.Hour

// GenerateAccessToken signs an RS256 token with kid, iss, aud, iat, nbf and jti.
func (k *Keys) GenerateAccessToken(userID uint, role Role) (string, error) {
	if k.priv == nil {
		return "", errors.New("private key not loaded")
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    k.issuer,
			Audience:  []string{k.audience},
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        fmt.Sprintf("%d-%d", userID, now.UnixNano()),
		},
	}

	tok := jwt.NewWithClaims(k.signMethod(), claims)
	tok.Header["kid"] = k.kid
	return tok.SignedString(k.priv)
}

// Verify validates signature, issuer, audience and expiry.
func (k *Keys) Verify(tokenStr string) (Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(k.issuer),
		jwt.WithAudience(k.audience),
		jwt.WithExpirationRequired(),
	)
	var c Claims
	_, err := parser.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		pub, ok := k.pub(kid)
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return pub, nil
	})
	if err != nil {
		return Principal{}, err
	}
	return c.principal()
}

func (c *Claims) principal() (Principal, error) {
	if c.UserID == 0 {
		return Principal{}, errors.New("token without user")
	}
	role, ok := ParseRole(string(c.Role))
	if !ok {
		return Principal{}, errors.New("token with unknown role")
	}
	return Principal{UserID: c.UserID, Role: role}, nil
}

func audienceContains(a jwt.ClaimStrings, want string) bool {
	return slices.Contains(a, want)
}
