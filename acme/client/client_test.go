package client

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmfigol/certbot/acme/keys"
)

// newTestClient builds a Client for the given CA base URL using a fresh
// ECDSA account key.
func newTestClient(t *testing.T, newRegURL string) (*Client, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	c, err := NewClient(ClientConfig{NewRegURL: newRegURL}, key, zap.NewNop().Sugar())
	require.NoError(t, err)
	return c, key
}

// accountKeyJSON returns the JSON serialization of the client key's public
// JWK, for embedding in fake server response bodies.
func accountKeyJSON(t *testing.T, key *ecdsa.PrivateKey) string {
	t.Helper()

	jwk := keys.JWKForSigner(key)
	jwkJSON, err := json.Marshal(&jwk)
	require.NoError(t, err)
	return string(jwkJSON)
}

// decodeJWSPayload decodes the payload of a JWS envelope POSTed by the
// client and unmarshals it into v.
func decodeJWSPayload(t *testing.T, v interface{}, r *http.Request) {
	t.Helper()

	var req struct{ Payload string }
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

	payload, err := base64.RawURLEncoding.DecodeString(req.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, v))
}

// testCertDER builds a self-signed certificate to stand in for a CA issued
// one.
func testCertDER(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "example.com"},
		DNSNames:     []string{"example.com"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}
