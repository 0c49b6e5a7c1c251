package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"rollcall/internal/agent"
	"rollcall/internal/observability"
)

func main() {
	configPath := flag.String("config", "/etc/rollcall/agent.json", "path to the agent config file")
	logLevel := flag.String("log-level", "info", "zerolog level")
	once := flag.Bool("once", false, "enroll (if needed), send one heartbeat, and exit")
	flag.Parse()

	observability.InitLogger(*logLevel)

	a, err := agent.New(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("agent setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := a.EnrollIfNeeded(ctx); err != nil {
			log.Fatal().Err(err).Msg("enroll failed")
		}
		if err := a.SendHeartbeat(ctx); err != nil {
			log.Fatal().Err(err).Msg("heartbeat failed")
		}
		return
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("agent stopped")
	}
}
