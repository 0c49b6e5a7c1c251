package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"rollcall/internal/observability"
	"rollcall/internal/pubkey"
	"rollcall/internal/server"
	"rollcall/internal/shared"
)

func main() {
	cfg, err := shared.LoadServerConfig()
	if err != nil {
		observability.InitLogger("warn")
		log.Fatal().Err(err).Msg("bad configuration")
	}
	observability.InitLogger(cfg.LogLevel)

	if err := cfg.ValidateInventoryDir(); err != nil {
		log.Fatal().Err(err).Msg("inventory directory check failed")
	}

	keys, err := pubkey.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("pubkey setup failed")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal().Err(err).Msg("db directory")
	}
	db, err := server.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	if err := server.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	api := &server.API{
		Store:       server.NewSQLiteStore(db),
		Inventory:   server.NewInventoryService(cfg.InventoryDir),
		Pubkeys:     keys,
		EnrollToken: cfg.EnrollToken,
		Domain:      cfg.Domain,
		RootPath:    cfg.RootPath,
	}

	log.Info().
		Str("addr", cfg.Addr).
		Str("inventory_dir", cfg.InventoryDir).
		Strs("environments", keys.Environments()).
		Msg("rc-server listening")
	if err := http.ListenAndServe(cfg.Addr, api.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
