package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/confidential-voting/api"
	"github.com/vocdoni/confidential-voting/config"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/service"
	"github.com/vocdoni/confidential-voting/storage"
	"github.com/vocdoni/confidential-voting/types"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// engineDBPrefix keeps the engine records apart from the ledger state.
var engineDBPrefix = []byte("fhe/")

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	datadir := flag.String("datadir", "", "data directory (overrides the configuration)")
	logLevel := flag.String("logLevel", "", "log level: debug, info, warn or error")
	logOutput := flag.String("logOutput", "", "log output: stdout, stderr or a file path")
	apiHost := flag.String("apiHost", "", "API listen host")
	apiPort := flag.Int("apiPort", 0, "API listen port")
	relayerFlag := flag.Bool("relayer", false, "serve the engine relayer endpoints")
	owner := flag.String("owner", "", "genesis owner address, used on first start only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if flag.CommandLine.Changed("datadir") {
		cfg.DataDir = *datadir
	}
	if flag.CommandLine.Changed("logLevel") {
		cfg.Log.Level = *logLevel
	}
	if flag.CommandLine.Changed("logOutput") {
		cfg.Log.Output = *logOutput
	}
	if flag.CommandLine.Changed("apiHost") {
		cfg.API.Host = *apiHost
	}
	if flag.CommandLine.Changed("apiPort") {
		cfg.API.Port = *apiPort
	}
	if flag.CommandLine.Changed("relayer") {
		cfg.API.Relayer = *relayerFlag
	}
	if flag.CommandLine.Changed("owner") {
		cfg.Owner = *owner
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Debugw("configuration loaded", "config", cfg.String())

	database, err := metadb.New(cfg.DBType, filepath.Join(cfg.DataDir, "db"))
	if err != nil {
		log.Fatal(err)
	}
	stg := storage.New(database)
	defer stg.Close()

	networkKey, err := types.ParseHexBytes(cfg.Engine.NetworkKey)
	if err != nil {
		log.Fatalf("invalid engine network key: %v", err)
	}
	engine, err := mockfhe.New(mockfhe.Options{
		NetworkKey:        networkKey,
		VerifierKey:       cfg.Engine.VerifierKey,
		ChainID:           cfg.Engine.ChainID,
		VerifyingContract: cfg.VerifyingContractAddress(),
		Database:          prefixeddb.NewPrefixedDatabase(database, engineDBPrefix),
	})
	if err != nil {
		log.Fatal(err)
	}

	l, err := ledger.New(stg, engine, ledger.Options{
		Owner:  cfg.OwnerAddress(),
		Limits: cfg.Limits,
	})
	if err != nil {
		log.Fatal(err)
	}

	var relayer api.Relayer
	if cfg.API.Relayer {
		relayer = engine
	}
	services := []service.Service{
		service.NewAPI(l, relayer, cfg.API.Host, cfg.API.Port),
	}
	if cfg.Finalizer.Enabled {
		services = append(services, service.NewFinalizer(l, engine.Verifier(), cfg.Finalizer.Interval))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := service.Run(ctx, services...); err != nil {
		log.Errorw(err, "node stopped")
		return
	}
	log.Info("node stopped")
}
