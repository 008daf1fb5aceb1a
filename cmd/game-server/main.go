package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsession "miner-tycoon/internal/app/session"
	"miner-tycoon/internal/catalog"
	"miner-tycoon/internal/config"
	"miner-tycoon/internal/logging"
	"miner-tycoon/internal/store"
	httptransport "miner-tycoon/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("catalog load failed")
	}

	st, err := store.NewPostgres(cfg.Server.PostgresDSN, cfg.Server.SaveSlot)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	svc := appsession.NewService(cat, st, logNotifier{}, cfg.Sim.TokenPriceFiat, nil, nil)
	if err := svc.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("session bootstrap failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.StartLoops(ctx, cfg.Sim)

	r := httptransport.NewRouter(svc, st)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := svc.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("final flush failed")
	}
}
