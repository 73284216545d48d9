package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cheerclub/billing-api/internal/config"
)

// Keys signs and verifies the API's own RS256 access tokens.
type Keys struct {
	priv     *rsa.PrivateKey
	pubKeys  map[string]*rsa.PublicKey // kid -> pub
	kid      string
	issuer   string
	audience string
}

func NewKeys(priv *rsa.PrivateKey, kid, issuer, audience string) *Keys {
	return &Keys{
		priv:     priv,
		pubKeys:  map[string]*rsa.PublicKey{kid: &priv.PublicKey},
		kid:      kid,
		issuer:   issuer,
		audience: audience,
	}
}

// LoadKeys reads a PKCS#1 or PKCS#8 PEM private key from cfg.PrivateKeyPath
// and the public keys of any retired kids.
func LoadKeys(cfg config.Auth) (*Keys, error) {
	if cfg.PrivateKeyPath == "" || cfg.KID == "" || cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("missing envs: AUTH_RSA_PRIVATE_PATH/AUTH_KID/AUTH_ISSUER/AUTH_AUDIENCE")
	}

	block, err := readPEM(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	var priv *rsa.PrivateKey
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		priv = k
	} else if k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes); err2 == nil {
		rk, ok := k8.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		priv = rk
	} else {
		return nil, fmt.Errorf("parse private key: %v / %v", err, err2)
	}

	keys := NewKeys(priv, cfg.KID, cfg.Issuer, cfg.Audience)
	for kid, path := range cfg.RetiredKeys {
		pub, err := loadPublicKey(path)
		if err != nil {
			return nil, fmt.Errorf("retired key %s: %w", kid, err)
		}
		if err := keys.Trust(kid, pub); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Trust accepts tokens signed by a retired key. The active kid cannot be
// replaced.
func (k *Keys) Trust(kid string, pub *rsa.PublicKey) error {
	if kid == "" || pub == nil {
		return errors.New("trusted key needs a kid and a public key")
	}
	if kid == k.kid {
		return fmt.Errorf("kid %s is the signing key", kid)
	}
	k.pubKeys[kid] = pub
	return nil
}

func readPEM(path string) (*pem.Block, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, fmt.Errorf("pem decode %s failed", path)
	}
	return block, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}
	pk, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := pk.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return pub, nil
}

func (k *Keys) pub(kid string) (*rsa.PublicKey, bool) { p, ok := k.pubKeys[kid]; return p, ok }
func (k *Keys) signMethod() jwt.SigningMethod          { return jwt.SigningMethodRS256 }
