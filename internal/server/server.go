package server

import (
	"net/http"
	"time"

	"github.com/Garnistarr/water-data-app/internal/directory"
	"github.com/Garnistarr/water-data-app/internal/entry"
	"github.com/Garnistarr/water-data-app/internal/settings"
	"github.com/Garnistarr/water-data-app/internal/store"
)

type Config struct {
	ListenAddr   string
	SessionKey   []byte
	SessionTTL   time.Duration
	DirectoryTTL time.Duration
	SettingsPath string
}

type Server struct {
	cfg Config
	h   http.Handler
}

func New(cfg Config, st store.Store) (*Server, error) {
	sett := settings.NewStore(cfg.SettingsPath)
	if err := sett.Ensure(); err != nil {
		return nil, err
	}
	app, err := newApp(
		cfg.SessionKey,
		cfg.SessionTTL,
		directory.NewCache(st, cfg.DirectoryTTL),
		entry.NewWriter(st),
		sett,
	)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, h: app.routes()}, nil
}

func (s *Server) ListenAndServe() error {
	httpSrv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.h
}
