package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	acmenet "github.com/dmfigol/certbot/net"
)

func linkResponse(links ...string) *acmenet.NetResponse {
	h := http.Header{}
	for _, link := range links {
		h.Add("Link", link)
	}
	return &acmenet.NetResponse{Response: &http.Response{Header: h}}
}

func TestLinkHeader(t *testing.T) {
	resp := linkResponse(
		`<https://ca.example/acme/new-authz>;rel="next"`,
		`<https://ca.example/terms>;rel="terms-of-service"`,
	)

	assert.Equal(t, "https://ca.example/acme/new-authz", linkHeader(resp, "next"))
	assert.Equal(t, "https://ca.example/terms", linkHeader(resp, "terms-of-service"))
	assert.Equal(t, "", linkHeader(resp, "up"))
}

func TestLinkHeaderCommaJoined(t *testing.T) {
	resp := linkResponse(
		`<https://ca.example/acme/new-authz>;rel="next", <https://ca.example/acme/issuer-cert>;rel="up"`,
	)

	assert.Equal(t, "https://ca.example/acme/new-authz", linkHeader(resp, "next"))
	assert.Equal(t, "https://ca.example/acme/issuer-cert", linkHeader(resp, "up"))
}

func TestLinkHeaderUnquotedRel(t *testing.T) {
	resp := linkResponse(`<https://ca.example/acme/new-authz>;rel=next`)

	assert.Equal(t, "https://ca.example/acme/new-authz", linkHeader(resp, "next"))
}

func TestLinkHeaderNone(t *testing.T) {
	assert.Equal(t, "", linkHeader(linkResponse(), "next"))
}
