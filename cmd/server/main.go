package main

import (
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/config"
	httpservice "github.com/autistic-symposium/searcher-cowswap-go/internal/http"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/services/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using environment")
	}

	general := &config.GeneralConfig{}
	if err := general.Load(); err != nil {
		log.Fatal().Err(err).Msg("invalid server config")
	}
	if general.Env == config.DevEnv {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	general.ApplyLogLevel()

	solverConf := &config.SolverConfig{}
	if err := solverConf.Load(); err != nil {
		log.Fatal().Err(err).Msg("invalid solver config")
	}

	solver := router.NewSolver(router.Options{
		FeeBps:                solverConf.FeeBps,
		ConservationTolerance: big.NewInt(solverConf.ConservationTolerance),
	})

	service := httpservice.NewHTTPService(general, solverConf, solver)
	go func() {
		if err := service.Start(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := service.Stop(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
