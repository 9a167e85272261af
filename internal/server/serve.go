package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const shutdownGrace = 5 * time.Second

// ListenAndServe serves the router on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	return runUntilDone(ctx, srv, func() error { return srv.ListenAndServe() })
}

// ListenAndServeTLS serves HTTPS on addr with certificates from CertMagic
// and answers ACME challenges plus HTTPS redirects on httpAddr.
func (s *Server) ListenAndServeTLS(ctx context.Context, addr, httpAddr string, cfg CertMagicConfig) error {
	tlsConf, challenge, err := BuildCertMagicTLS(ctx, cfg)
	if err != nil {
		return err
	}
	redirect := &http.Server{Addr: httpAddr, Handler: challenge, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http challenge listener", "addr", httpAddr, "err", err)
		}
	}()
	defer redirect.Close()

	srv := &http.Server{Addr: addr, Handler: s.Router(), TLSConfig: tlsConf, ReadHeaderTimeout: 10 * time.Second}
	return runUntilDone(ctx, srv, func() error { return srv.ListenAndServeTLS("", "") })
}

func runUntilDone(ctx context.Context, srv *http.Server, serve func() error) error {
	errc := make(chan error, 1)
	go func() { errc <- serve() }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
