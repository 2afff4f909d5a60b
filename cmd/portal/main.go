// Package main provides the entry point for the dapp portal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"dapp-portal/internal/config"
	"dapp-portal/internal/contracts"
	"dapp-portal/internal/logger"
	"dapp-portal/internal/screen"
	"dapp-portal/internal/tui"
	"dapp-portal/internal/viewmodel"
	"dapp-portal/internal/wallet"

	dbpkg "dapp-portal/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	// Try to load .env from CWD if present; otherwise use environment as-is
	if _, statErr := os.Stat(".env"); statErr == nil {
		_ = godotenv.Load(".env")
	}

	cfg := config.Load()

	// If debug logs are enabled, write them to file to avoid interfering with TUI
	var logWriter io.Writer = os.Stderr
	if cfg.Debug {
		logFile, err := os.OpenFile("portal.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			defer logFile.Close()
			logWriter = logFile
			fmt.Fprintf(os.Stderr, "Debug logs written to portal.log\n")
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log file, logs will go to stderr (may interfere with TUI): %v\n", err)
		}
	}

	log := logger.NewWithWriter(cfg.Debug, logWriter)

	fmt.Printf("dapp portal starting...\n")
	fmt.Printf("Config loaded: %s\n", cfg.DebugString())
	fmt.Printf("Loading...\n")

	opts := viewmodel.Options{Log: log}

	gormDB, err := dbpkg.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if gormDB != nil {
		log.Printf("DB connected")

		if err := dbpkg.AutoMigrate(gormDB); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		log.Printf("Migrations applied")
		opts.Recorder = dbpkg.NewArchive(gormDB)
	} else {
		log.Printf("DATABASE_URL not provided – persistence disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := contracts.Dial(ctx, cfg.RPCURL)
	if err != nil {
		log.Fatalf("failed to connect node: %v", err)
	}
	defer client.Close()

	chainID, err := contracts.ResolveChainID(ctx, client, cfg.ChainID)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("connected to chain %s", chainID)

	greetSchema, err := contracts.WavePortalSchema(cfg.GreetABIPath)
	if err != nil {
		log.Fatalf("failed to load WavePortal schema: %v", err)
	}
	petSchema, err := contracts.PetVoteSchema(cfg.PetABIPath)
	if err != nil {
		log.Fatalf("failed to load PetVote schema: %v", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("failed to init wallet: %v", err)
	}

	alerts := tui.NewAlertQueue()
	opts.Alert = alerts
	mgr := wallet.NewManager(provider, alerts, log)
	factory := contracts.NewFactory(client, cfg.GasLimit, cfg.QueryTimeout, log)

	build := screenBuilder{
		cfg:     cfg,
		chainID: chainID,
		wallet:  mgr,
		factory: factory,
		greet:   greetSchema,
		pets:    petSchema,
		opts:    opts,
	}
	sel := screen.NewSelector(ctx, build.Build, log)

	if err := tui.Run(ctx, tui.Options{
		Wallet:   mgr,
		Selector: sel,
		Alerts:   alerts,
		Chain:    chainID.String(),
		Log:      log,
	}); err != nil {
		log.Printf("TUI error: %v", err)
	}
	log.Println("shutting down...")

	// Ensure logs flushed in some environments
	_ = os.Stderr.Sync()
	_ = os.Stdout.Sync()
}

// newProvider picks the wallet source: keystore first, then a raw key.
func newProvider(cfg config.Config) (wallet.Provider, error) {
	switch {
	case !cfg.HasWallet():
		return wallet.NoProvider{}, nil
	case cfg.KeystoreDir != "":
		return wallet.NewKeystoreProvider(cfg.KeystoreDir, cfg.Account, wallet.StaticPassphrase(cfg.KeystorePassword)), nil
	default:
		return wallet.NewKeyProvider(cfg.PrivateKey, cfg.AutoConnect, nil)
	}
}
