package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// RemoteVerifier accepts tokens signed by the club's identity service,
// fetching its signing keys from a JWKS endpoint.
type RemoteVerifier struct {
	keys     keyfunc.Keyfunc
	issuer   string
	audience string
}

// NewRemoteVerifier starts the JWKS refresh loop; it stops when ctx ends.
func NewRemoteVerifier(ctx context.Context, jwksURL, issuer, audience string) (*RemoteVerifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	return &RemoteVerifier{keys: k, issuer: issuer, audience: audience}, nil
}

func (v *RemoteVerifier) Verify(tokenStr string) (Principal, error) {
	var c Claims
	tok, err := jwt.ParseWithClaims(tokenStr, &c, v.keys.Keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, err
	}
	if !tok.Valid {
		return Principal{}, errors.New("invalid token")
	}
	if !audienceContains(c.Audience, v.audience) {
		return Principal{}, errors.New("invalid audience")
	}
	return c.principal()
}
