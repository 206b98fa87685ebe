//go:build !tinygo

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

// ServeAutoTLS serves HTTPS for hosts with certificates from Let's Encrypt
func (s *Server) ServeAutoTLS(hosts ...string) error {
	return s.Serve(autocert.NewListener(hosts...))
}

// Run serves until ctx is done, then shuts down gracefully.  HTTPS is used
// when TLS hosts are configured.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		if len(s.cfg.TLSHosts) > 0 {
			s.logger.Info("Serving", "tls", s.cfg.TLSHosts)
			errc <- s.ServeAutoTLS(s.cfg.TLSHosts...)
		} else {
			s.logger.Info("Serving", "addr", s.Addr)
			errc <- s.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
