package client

import (
	"encoding/json"

	jose "github.com/go-jose/go-jose/v4"
)

// wrapInJWS serializes the given resource body to JSON and wraps it in
// a JWS envelope signed with the account key, ready for transmission. The
// public JWK is embedded in the protected header so the server can bind the
// request to the account key. Signing failures from the jose layer
// propagate as-is.
func (c *Client) wrapInJWS(body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("serialized request body", "json", string(payload))

	signingKey := jose.SigningKey{
		Key:       c.signer,
		Algorithm: c.alg,
	}

	signer, err := jose.NewSigner(signingKey, &jose.SignerOptions{
		EmbedJWK: true,
	})
	if err != nil {
		return nil, err
	}

	signed, err := signer.Sign(payload)
	if err != nil {
		return nil, err
	}

	return []byte(signed.FullSerialize()), nil
}
