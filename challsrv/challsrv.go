// Package challsrv runs a development challenge-response server alongside
// an issuance flow. The protocol core only transports challenge responses;
// serving the proof of control (HTTP-01/DNS-01 response content) is the
// composing application's concern, and this wrapper covers the development
// and testing case.
package challsrv

import (
	"fmt"
	"log"
	"os"

	"github.com/letsencrypt/challtestsrv"
)

// Config holds the listening ports for the challenge response servers.
// A zero port disables that challenge type.
type Config struct {
	// Port number the CA validates HTTP-01 challenges over.
	HTTPPort int
	// Port number the CA validates DNS-01 challenges over.
	DNSPort int
}

// ChallengeServer wraps a challtestsrv instance serving challenge
// responses.
type ChallengeServer struct {
	srv *challtestsrv.ChallSrv
}

// New creates a ChallengeServer from the given config. The server is not
// started until Run is called.
func New(conf Config) (*ChallengeServer, error) {
	var httpAddrs, dnsAddrs []string
	if conf.HTTPPort != 0 {
		httpAddrs = append(httpAddrs, fmt.Sprintf(":%d", conf.HTTPPort))
	}
	if conf.DNSPort != 0 {
		dnsAddrs = append(dnsAddrs, fmt.Sprintf(":%d", conf.DNSPort))
	}

	srv, err := challtestsrv.New(challtestsrv.Config{
		HTTPOneAddrs: httpAddrs,
		DNSOneAddrs:  dnsAddrs,
		Log:          log.New(os.Stdout, "challRespSrv: ", log.Ldate|log.Ltime),
	})
	if err != nil {
		return nil, err
	}

	return &ChallengeServer{srv: srv}, nil
}

// Run starts the challenge response listeners. It blocks until Shutdown is
// called, so it is typically run in its own goroutine.
func (s *ChallengeServer) Run() {
	s.srv.Run()
}

// Shutdown stops the challenge response listeners.
func (s *ChallengeServer) Shutdown() {
	s.srv.Shutdown()
}

// AddHTTPResponse serves the given key authorization for an HTTP-01 token.
func (s *ChallengeServer) AddHTTPResponse(token, keyAuth string) {
	s.srv.AddHTTPOneChallenge(token, keyAuth)
}

// AddDNSResponse serves the given TXT value for a DNS-01 host.
func (s *ChallengeServer) AddDNSResponse(host, value string) {
	s.srv.AddDNSOneChallenge(host, value)
}
