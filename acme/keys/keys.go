// Package keys offers utility functions for working with crypto.Signers,
// JWKs and PEM serialization.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
)

// SigAlgForSigner returns the JWS signature algorithm matching the signer's
// key type.
func SigAlgForSigner(signer crypto.Signer) (jose.SignatureAlgorithm, error) {
	switch signer.(type) {
	case *ecdsa.PrivateKey:
		return jose.ES256, nil
	case *rsa.PrivateKey:
		return jose.RS256, nil
	}
	return "", fmt.Errorf("signer was unknown type: %T", signer)
}

func algForKey(signer crypto.Signer) string {
	switch signer.(type) {
	case *ecdsa.PrivateKey:
		return "ECDSA"
	case *rsa.PrivateKey:
		return "RSA"
	}
	return "unknown"
}

// JWKForSigner returns the public JWK for a signer's key.
func JWKForSigner(signer crypto.Signer) jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       signer.Public(),
		Algorithm: algForKey(signer),
	}
}

// JWKThumbprintBytes returns the SHA-256 thumbprint of the signer's public
// JWK. See RFC 7638.
func JWKThumbprintBytes(signer crypto.Signer) []byte {
	jwk := JWKForSigner(signer)
	thumbBytes, _ := jwk.Thumbprint(crypto.SHA256)
	return thumbBytes
}

// JWKThumbprint returns the base64url encoding of JWKThumbprintBytes.
func JWKThumbprint(signer crypto.Signer) string {
	return base64.RawURLEncoding.EncodeToString(JWKThumbprintBytes(signer))
}

// PublicKeyThumbprint returns the base64url SHA-256 thumbprint of an
// arbitrary JWK, for comparing a server-declared account key against the
// client's own.
func PublicKeyThumbprint(jwk *jose.JSONWebKey) (string, error) {
	if jwk == nil {
		return "", fmt.Errorf("nil JWK")
	}
	thumbBytes, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(thumbBytes), nil
}

// KeyAuth constructs a key authorization string for a challenge token.
func KeyAuth(signer crypto.Signer, token string) string {
	return fmt.Sprintf("%s.%s", token, JWKThumbprint(signer))
}

// NewSigner generates a fresh private key of the given type ("ecdsa" or
// "rsa").
func NewSigner(keyType string) (crypto.Signer, error) {
	var randKey crypto.Signer
	var err error
	switch keyType {
	case "ecdsa":
		randKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case "rsa":
		randKey, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		err = fmt.Errorf("unknown key type: %q", keyType)
	}
	if err != nil {
		return nil, err
	}
	return randKey, nil
}

// SignerToPEM serializes a private key to PEM.
func SignerToPEM(signer crypto.Signer) (string, error) {
	var keyBytes []byte
	var keyHeader string
	var err error
	switch k := signer.(type) {
	case *ecdsa.PrivateKey:
		keyBytes, err = x509.MarshalECPrivateKey(k)
		keyHeader = "EC PRIVATE KEY"
	case *rsa.PrivateKey:
		keyBytes = x509.MarshalPKCS1PrivateKey(k)
		keyHeader = "RSA PRIVATE KEY"
	default:
		err = fmt.Errorf("unknown key type: %T", k)
	}
	if err != nil {
		return "", err
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  keyHeader,
		Bytes: keyBytes,
	})
	return string(pemBytes), nil
}

// SignerFromPEM parses a PEM encoded EC or RSA private key.
func SignerFromPEM(pemBytes []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	switch block.Type {
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unknown PEM block type %q", block.Type)
	}
}
