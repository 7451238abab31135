package main

import (
	"encoding/base64"
	"log"

	"github.com/Garnistarr/water-data-app/internal/config"
	"github.com/Garnistarr/water-data-app/internal/logger"
	"github.com/Garnistarr/water-data-app/internal/server"
	"github.com/Garnistarr/water-data-app/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Missing or malformed configuration halts the process before serving.
		log.Fatalf("startup: %v", err)
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		log.Fatalf("startup: init logger: %v", err)
	}
	defer logger.Close()

	st, err := store.Open(cfg.Secrets.StoreDriver, cfg.Secrets.StoreDSN)
	if err != nil {
		log.Fatalf("startup: open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	srv, err := server.New(server.Config{
		ListenAddr:   cfg.ListenAddr,
		SessionKey:   decodeSessionKey(cfg.Secrets.SessionKey),
		SessionTTL:   cfg.SessionTTL,
		DirectoryTTL: cfg.DirectoryTTL,
		SettingsPath: cfg.SettingsPath,
	}, st)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	logger.Info("waterapp listening on %s (store: %s)", cfg.ListenAddr, cfg.Secrets.StoreDriver)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

// decodeSessionKey accepts a base64url-encoded key and falls back to the raw
// string for keys generated by hand.
func decodeSessionKey(key string) []byte {
	if raw, err := base64.RawURLEncoding.DecodeString(key); err == nil && len(raw) >= 16 {
		return raw
	}
	return []byte(key)
}
