package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autistic-symposium/searcher-cowswap-go/internal/config"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/instance"
	"github.com/autistic-symposium/searcher-cowswap-go/internal/services/router"
)

func main() {
	amms := flag.String("a", "", "list amms data in a given order instance")
	orders := flag.String("o", "", "list orders data in a given order instance")
	spread := flag.String("s", "", "solve input orders with the spread strategy")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using environment")
	}

	general := &config.GeneralConfig{}
	if err := general.Load(); err != nil {
		log.Fatal().Err(err).Msg("invalid general config")
	}
	general.ApplyLogLevel()

	solverConf := &config.SolverConfig{}
	if err := solverConf.Load(); err != nil {
		log.Fatal().Err(err).Msg("invalid solver config")
	}

	switch {
	case *amms != "":
		listSection(*amms, "amms")
	case *orders != "":
		listSection(*orders, "orders")
	case *spread != "":
		solve(*spread, solverConf)
	default:
		flag.Usage()
	}
}

func listSection(path, section string) {
	doc, err := instance.ParseFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("instance", path).Msg("could not parse instance")
	}

	var data interface{} = doc.Amms
	if section == "orders" {
		data = doc.Orders
	}
	pretty, err := sonic.MarshalIndent(data, "", "    ")
	if err != nil {
		log.Fatal().Err(err).Msg("could not render instance")
	}
	fmt.Println(string(pretty))
}

func solve(path string, conf *config.SolverConfig) {
	log.Info().Str("instance", path).Msg("solving with spread strategy")

	doc, err := instance.ParseFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("instance", path).Msg("could not parse instance")
	}

	jobs, parseFailed := instance.BuildJobs(doc)
	solver := router.NewSolver(router.Options{
		FeeBps:                conf.FeeBps,
		ConservationTolerance: tolerance(conf),
	})
	result := solver.SolveBatch(jobs, conf.BatchWorkers)

	for num, ferr := range parseFailed {
		log.Error().Str("order", string(num)).Err(ferr).Msg("order not solved")
	}
	for num, serr := range result.Errors {
		log.Error().Str("order", string(num)).Err(serr).Msg("order not solved")
	}

	out := outputPath(conf.OutputDir, path)
	if err := instance.WriteSolutionFile(out, instance.BuildSolutionDocument(doc, result)); err != nil {
		log.Fatal().Err(err).Msg("could not save solution")
	}
	log.Info().Str("output", out).Int("solved", len(result.Solutions)).Msg("results saved")
}

func outputPath(dir, inputPath string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, "solution-"+base+".json")
}

func tolerance(conf *config.SolverConfig) *big.Int {
	return big.NewInt(conf.ConservationTolerance)
}
