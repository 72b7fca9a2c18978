package auth

import (
	"crypto"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// KeyPair holds the parsed key material for one signing method. Signer may
// be nil for deployments that only verify tokens.
type KeyPair struct {
	Method   jwt.SigningMethod
	Signer   crypto.PrivateKey
	Verifier crypto.PublicKey
}

// SigningMethod maps a configured algorithm name to the jwt method. Only
// asymmetric algorithms are accepted.
func SigningMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case jwt.SigningMethodRS256.Alg():
		return jwt.SigningMethodRS256, nil
	case jwt.SigningMethodES256.Alg():
		return jwt.SigningMethodES256, nil
	case jwt.SigningMethodEdDSA.Alg():
		return jwt.SigningMethodEdDSA, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
}

// ParseKeyPair parses PEM encoded keys for alg. privatePEM may be empty.
func ParseKeyPair(alg string, privatePEM, publicPEM []byte) (*KeyPair, error) {
	method, err := SigningMethod(alg)
	if err != nil {
		return nil, err
	}
	if len(publicPEM) == 0 {
		return nil, errors.New("public key is required")
	}

	kp := &KeyPair{Method: method}

	switch method {
	case jwt.SigningMethodRS256:
		if kp.Verifier, err = jwt.ParseRSAPublicKeyFromPEM(publicPEM); err != nil {
			return nil, fmt.Errorf("invalid rsa public key: %w", err)
		}
		if len(privatePEM) > 0 {
			if kp.Signer, err = jwt.ParseRSAPrivateKeyFromPEM(privatePEM); err != nil {
				return nil, fmt.Errorf("invalid rsa private key: %w", err)
			}
		}
	case jwt.SigningMethodES256:
		if kp.Verifier, err = jwt.ParseECPublicKeyFromPEM(publicPEM); err != nil {
			return nil, fmt.Errorf("invalid ecdsa public key: %w", err)
		}
		if len(privatePEM) > 0 {
			if kp.Signer, err = jwt.ParseECPrivateKeyFromPEM(privatePEM); err != nil {
				return nil, fmt.Errorf("invalid ecdsa private key: %w", err)
			}
		}
	default:
		if kp.Verifier, err = jwt.ParseEdPublicKeyFromPEM(publicPEM); err != nil {
			return nil, fmt.Errorf("invalid ed25519 public key: %w", err)
		}
		if len(privatePEM) > 0 {
			if kp.Signer, err = jwt.ParseEdPrivateKeyFromPEM(privatePEM); err != nil {
				return nil, fmt.Errorf("invalid ed25519 private key: %w", err)
			}
		}
	}

	return kp, nil
}

// LoadKeyPair reads PEM files from disk and parses them. An empty
// privatePath yields a verify-only key pair.
func LoadKeyPair(alg, privatePath, publicPath string) (*KeyPair, error) {
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}

	var privatePEM []byte
	if privatePath != "" {
		if privatePEM, err = os.ReadFile(privatePath); err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
	}

	return ParseKeyPair(alg, privatePEM, publicPEM)
}
