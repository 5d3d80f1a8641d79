// certbot is a small command line client for ACME v02 certificate
// authorities. It can obtain a certificate for a set of domains, serving
// HTTP-01/DNS-01 challenge responses from a built-in development challenge
// server, and revoke a previously obtained certificate.
package main

import (
	"context"
	"crypto"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	acmeclient "github.com/dmfigol/certbot/acme/client"
	"github.com/dmfigol/certbot/acme/keys"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
	"github.com/dmfigol/certbot/challsrv"
	acmecmd "github.com/dmfigol/certbot/cmd"
)

var (
	newRegURL   string
	caCert      string
	keyPath     string
	contact     []string
	strictCT    bool
	verbose     bool
	httpPort    int
	dnsPort     int
	certOut     string
	minDelaySec int
	certURI     string
	authzURIs   []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "certbot",
		Short:        "An ACME v02 certificate issuance client",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&newRegURL, "new-reg",
		"https://ca.example/acme/new-reg", "URL of the CA's new-registration endpoint")
	rootCmd.PersistentFlags().StringVar(&caCert, "ca", "",
		"CA certificate(s) for verifying ACME server HTTPS")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "account.pem",
		"Path to the PEM encoded account key (created if absent)")
	rootCmd.PersistentFlags().StringSliceVar(&contact, "contact", nil,
		"Contact addresses for the account registration (e.g. mailto:admin@example.com)")
	rootCmd.PersistentFlags().BoolVar(&strictCT, "strict-content-type", false,
		"Fail on any unexpected response Content-Type")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	obtainCmd := &cobra.Command{
		Use:   "obtain [domains...]",
		Short: "Register, authorize the given domains and obtain a certificate",
		Args:  cobra.MinimumNArgs(1),
		RunE:  obtainRun,
	}
	obtainCmd.Flags().IntVar(&httpPort, "httpPort", 5002,
		"HTTP-01 challenge response server port")
	obtainCmd.Flags().IntVar(&dnsPort, "dnsPort", 5252,
		"DNS-01 challenge response server port")
	obtainCmd.Flags().StringVarP(&certOut, "out", "o", "cert.pem",
		"Path to write the issued certificate chain to")
	obtainCmd.Flags().IntVar(&minDelaySec, "minDelay", 5,
		"Minimum seconds between polls of a pending authorization")

	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a previously obtained certificate",
		RunE:  revokeRun,
	}
	revokeCmd.Flags().StringVar(&certURI, "cert-uri", "",
		"Location URI of the certificate to revoke")
	revokeCmd.Flags().StringSliceVar(&authzURIs, "authz-uri", nil,
		"Location URIs of the certificate's originating authorizations")

	rootCmd.AddCommand(obtainCmd, revokeCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// handleSignals shuts the challenge response server down when the process
// is interrupted mid-flow.
func handleSignals(srv *challsrv.ChallengeServer) {
	acmecmd.CatchSignals(srv.Shutdown)
}

func initLogger() *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	logger, _ := zap.Config{
		Encoding:      "console",
		Level:         zap.NewAtomicLevelAt(level),
		OutputPaths:   []string{"stderr"},
		EncoderConfig: encoderConfig,
	}.Build()
	return logger.Sugar()
}

// loadOrCreateKey restores the account key from path, generating and saving
// a fresh ECDSA key when the file does not exist yet.
func loadOrCreateKey(path string, log *zap.SugaredLogger) (crypto.Signer, error) {
	if pemBytes, err := os.ReadFile(path); err == nil {
		log.Debugw("restored account key", "path", path)
		return keys.SignerFromPEM(pemBytes)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	signer, err := keys.NewSigner("ecdsa")
	if err != nil {
		return nil, err
	}
	pemKey, err := keys.SignerToPEM(signer)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(pemKey), 0600); err != nil {
		return nil, err
	}
	log.Infow("created account key", "path", path)
	return signer, nil
}

func newClient(log *zap.SugaredLogger) (*acmeclient.Client, crypto.Signer, error) {
	signer, err := loadOrCreateKey(keyPath, log)
	if err != nil {
		return nil, nil, err
	}
	client, err := acmeclient.NewClient(acmeclient.ClientConfig{
		NewRegURL:         newRegURL,
		CACert:            caCert,
		StrictContentType: strictCT,
	}, signer, log)
	if err != nil {
		return nil, nil, err
	}
	return client, signer, nil
}

func obtainRun(_ *cobra.Command, domains []string) error {
	log := initLogger()
	defer log.Sync()

	ctx := context.Background()

	client, signer, err := newClient(log)
	if err != nil {
		return err
	}

	// Challenge response servers run for the duration of the flow.
	srv, err := challsrv.New(challsrv.Config{
		HTTPPort: httpPort,
		DNSPort:  dnsPort,
	})
	if err != nil {
		return err
	}
	go srv.Run()
	defer srv.Shutdown()
	go handleSignals(srv)

	regr, err := client.Register(ctx, contact)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	var authzrs []resources.AuthorizationResource
	for _, domain := range domains {
		authzr, err := client.RequestAuthorization(ctx, messages.DNSIdentifier(domain), regr)
		if err != nil {
			return fmt.Errorf("authorization for %q failed: %w", domain, err)
		}

		if err := answerHTTPChallenge(ctx, client, srv, signer, authzr); err != nil {
			return fmt.Errorf("challenge for %q failed: %w", domain, err)
		}
		authzrs = append(authzrs, authzr)
	}

	certKey, err := keys.NewSigner("ecdsa")
	if err != nil {
		return err
	}
	csrDER, _, err := acmeclient.CSR("", domains, certKey)
	if err != nil {
		return err
	}

	certr, _, err := client.PollAndRequestIssuance(
		ctx, csrDER, authzrs, time.Duration(minDelaySec)*time.Second)
	if err != nil {
		return fmt.Errorf("issuance failed: %w", err)
	}

	chainDER, err := client.FetchChain(ctx, certr)
	if err != nil {
		return fmt.Errorf("chain fetch failed: %w", err)
	}

	if err := writeCertificates(certOut, certr.Body, chainDER); err != nil {
		return err
	}
	log.Infow("obtained certificate", "uri", certr.URI, "out", certOut)
	return nil
}

// answerHTTPChallenge picks the HTTP-01 challenge from an authorization,
// serves its key authorization from the challenge response server and
// submits the challenge response.
func answerHTTPChallenge(ctx context.Context, client *acmeclient.Client, srv *challsrv.ChallengeServer, signer crypto.Signer, authzr resources.AuthorizationResource) error {
	for _, chall := range authzr.Body.Challenges {
		if chall.Type != "http-01" {
			continue
		}

		keyAuth := keys.KeyAuth(signer, chall.Token)
		srv.AddHTTPResponse(chall.Token, keyAuth)

		challr := resources.ChallengeResource{Body: chall, URI: chall.URI}
		_, err := client.AnswerChallenge(ctx, challr, messages.ChallengeResponse{
			Type:             chall.Type,
			KeyAuthorization: keyAuth,
			Token:            chall.Token,
		})
		return err
	}
	return fmt.Errorf("authorization %q offers no http-01 challenge", authzr.URI)
}

func writeCertificates(path string, certDER, chainDER []byte) error {
	out := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if len(chainDER) > 0 {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: chainDER})...)
	}
	return os.WriteFile(path, out, 0644)
}

func revokeRun(_ *cobra.Command, _ []string) error {
	log := initLogger()
	defer log.Sync()

	if certURI == "" {
		return fmt.Errorf("revoke: --cert-uri is required")
	}

	client, _, err := newClient(log)
	if err != nil {
		return err
	}

	certr := resources.CertificateResource{URI: certURI}
	for _, uri := range authzURIs {
		certr.Authzrs = append(certr.Authzrs, resources.AuthorizationResource{URI: uri})
	}

	if err := client.Revoke(context.Background(), certr, messages.RevocationNow); err != nil {
		return fmt.Errorf("revocation failed: %w", err)
	}
	log.Infow("revoked certificate", "uri", certURI)
	return nil
}
