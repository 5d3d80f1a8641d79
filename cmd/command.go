// Package cmd provides shared helpers for the certbot binaries.
package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

// CatchSignals blocks until the process receives SIGTERM, SIGINT or
// SIGHUP, runs the cleanup callback and exits. Run it in its own
// goroutine alongside a long-lived flow.
func CatchSignals(cleanup func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	sig := <-sigChan
	log.Printf("caught %s, shutting down", sig)

	if cleanup != nil {
		cleanup()
	}
	os.Exit(0)
}
