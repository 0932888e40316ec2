// Package app wires the LifeLines services together and runs the processes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/parishlabs/lifelines/internal/formation"
	"github.com/parishlabs/lifelines/internal/httpapi"
	"github.com/parishlabs/lifelines/internal/lifeline"
	"github.com/parishlabs/lifelines/internal/notify"
	"github.com/parishlabs/lifelines/internal/storage/sqlite"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options configures one LifeLines process.
type Options struct {
	Addr    string
	DBPath  string
	Issuer  string
	JWTKey  string
	Webhook string
	Sweep   string

	SMTPAddr string
	SMTPFrom string
}

// Server is a fully wired LifeLines HTTP process.
type Server struct {
	httpServer *http.Server
	store      *sqlite.Store

	// Formation is exposed for the sweeper, which shares the wiring.
	Formation *formation.Service
}

// NewServer opens storage and wires the domain services and HTTP handlers.
func NewServer(opts Options) (*Server, error) {
	if strings.TrimSpace(opts.DBPath) == "" {
		return nil, errors.New("db path is required")
	}
	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	var mailer notify.Mailer
	if strings.TrimSpace(opts.SMTPAddr) != "" {
		mailer = &notify.SMTPMailer{Addr: opts.SMTPAddr, From: opts.SMTPFrom}
	} else {
		mailer = &notify.LogMailer{}
	}
	gateway := notify.NewGateway(mailer, store, log.Default())

	formationSvc := formation.NewService(store, store, store, gateway)
	lifelineSvc := lifeline.NewService(store, store)
	verifier := &httpapi.TokenVerifier{Secret: []byte(opts.JWTKey), Issuer: opts.Issuer}

	api := httpapi.NewServer(formationSvc, lifelineSvc, verifier, []byte(opts.Webhook), opts.Sweep, log.Default())
	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return &Server{
		httpServer: httpServer,
		store:      store,
		Formation:  formationSvc,
	}, nil
}

// Close releases storage.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// ListenAndServe runs the HTTP server until the context ends, then drains
// in-flight requests before closing.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}

	serveErr := make(chan error, 1)
	log.Printf("lifelines listening on %s", s.httpServer.Addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
