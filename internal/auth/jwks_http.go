package auth

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"slices"
)

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// set lists the signing key first, then retired keys by kid.
func (k *Keys) set() jwkSet {
	kids := make([]string, 0, len(k.pubKeys))
	for kid := range k.pubKeys {
		if kid != k.kid {
			kids = append(kids, kid)
		}
	}
	slices.Sort(kids)
	if _, ok := k.pubKeys[k.kid]; ok {
		kids = slices.Insert(kids, 0, k.kid)
	}

	out := jwkSet{Keys: make([]jwk, 0, len(kids))}
	for _, kid := range kids {
		pub := k.pubKeys[kid]
		out.Keys = append(out.Keys, jwk{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	return out
}

// JWKSHandler publishes the verification keys so other club services can
// check billing-issued tokens.
// GET /.well-known/jwks.json
func (k *Keys) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	set := k.set()
	if len(set.Keys) == 0 {
		http.Error(w, "no public key", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_ = json.NewEncoder(w).Encode(set)
}
