// Package client implements the ACME v02 protocol core: signing outgoing
// resource bodies, classifying server responses, reconciling them into
// typed resources, and polling pending authorizations until certificate
// issuance or revocation can be requested.
package client

import (
	"crypto"
	"fmt"
	"net/url"
	"strings"

	jose "github.com/go-jose/go-jose/v4"
	"go.uber.org/zap"

	"github.com/dmfigol/certbot/acme/keys"
	acmenet "github.com/dmfigol/certbot/net"
)

// Client performs ACME v02 networking against a single CA on behalf of one
// account key. After registration every other endpoint is discovered from
// link relations, so the new-reg URL is the only configured endpoint.
//
// The Client never mutates a resource in place: every operation returns
// a fresh snapshot built from the server's response. Two Clients operating
// on disjoint authorization sets may run concurrently; the Client itself
// holds no mutable protocol state.
type Client struct {
	// The CA's new-registration endpoint.
	NewRegURL *url.URL
	// the account private key used to sign request envelopes.
	signer crypto.Signer
	// the JWS algorithm matching the account key type.
	alg jose.SignatureAlgorithm
	// the net object used to make HTTP GET/POST requests to the CA.
	net *acmenet.ACMENet
	// thumbprint of the account public key, compared against the key the
	// server declares on registration and authorization bodies.
	keyThumbprint string

	log *zap.SugaredLogger

	strictContentType         bool
	strictRegistrationUpdates bool
}

// ClientConfig contains configuration options provided to NewClient.
type ClientConfig struct {
	// A fully qualified URL for the CA's new-registration endpoint. Must
	// include an HTTP/HTTPS protocol prefix.
	NewRegURL string
	// An optional file path to one or more PEM encoded CA certificates to
	// be used as trust roots for HTTPS requests to the ACME server.
	CACert string
	// StrictContentType disables the default tolerance for responses whose
	// Content-Type differs from the expected one even though the body
	// parses. Real-world servers are inconsistent about declaring
	// Content-Type, so this defaults to false.
	StrictContentType bool
	// StrictRegistrationUpdates makes UpdateRegistration fault when the
	// server returns a registration differing from the one sent. Servers
	// legitimately vary fields on update (recovery tokens, agreement URLs)
	// so this defaults to false.
	StrictRegistrationUpdates bool
}

// normalize validates a ClientConfig.
func (conf *ClientConfig) normalize() error {
	conf.NewRegURL = strings.TrimSpace(conf.NewRegURL)

	if conf.NewRegURL == "" {
		return fmt.Errorf("NewRegURL must not be empty")
	}

	if _, err := url.Parse(conf.NewRegURL); err != nil {
		return fmt.Errorf("NewRegURL invalid: %s", err.Error())
	}

	return nil
}

// NewClient creates a Client from the given ClientConfig and account key.
// The logger may be nil, in which case the client logs nothing. If the
// config is not valid or the key type is unsupported an error is returned
// along with a nil Client.
func NewClient(config ClientConfig, signer crypto.Signer, logger *zap.SugaredLogger) (*Client, error) {
	if err := config.normalize(); err != nil {
		return nil, err
	}
	if signer == nil {
		return nil, fmt.Errorf("account signer must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	alg, err := keys.SigAlgForSigner(signer)
	if err != nil {
		return nil, err
	}

	net, err := acmenet.New(config.CACert)
	if err != nil {
		return nil, fmt.Errorf("unable to create ACME net client: %s", err)
	}

	// Safe to discard the error, normalize parsed the URL above.
	regURL, _ := url.Parse(config.NewRegURL)

	return &Client{
		NewRegURL:                 regURL,
		signer:                    signer,
		alg:                       alg,
		net:                       net,
		keyThumbprint:             keys.JWKThumbprint(signer),
		log:                       logger,
		strictContentType:         config.StrictContentType,
		strictRegistrationUpdates: config.StrictRegistrationUpdates,
	}, nil
}

// UnexpectedUpdateError reports a well-formed, successful server response
// that violates a resource consistency invariant: the declared location,
// identifier or account key does not match what the client holds. It is
// fatal to the current flow and never repaired silently.
type UnexpectedUpdateError struct {
	// The offending resource (or the raw offending value when no resource
	// could be built).
	Resource interface{}
	// Why the resource was rejected.
	Reason string
}

func (e *UnexpectedUpdateError) Error() string {
	return fmt.Sprintf("unexpected update: %s", e.Reason)
}
