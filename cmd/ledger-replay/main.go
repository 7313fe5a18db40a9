package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/medrex/healthcare-ledger/internal/replay"
	"github.com/medrex/healthcare-ledger/pkg/config"
	"github.com/medrex/healthcare-ledger/pkg/ledger"
	"github.com/medrex/healthcare-ledger/pkg/logger"
)

func main() {
	flags := pflag.NewFlagSet("ledger-replay", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	flags.String("db", "", "LevelDB world state directory")
	flags.StringP("input", "i", "", "transaction log (JSON Lines), - for stdin")
	flags.StringP("output", "o", "", "result log, - for stdout")
	flags.String("log-level", "", "log level")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ledger-replay [flags]\n\nOperations: %s\n\n", strings.Join(replay.Operations(), ", "))
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	_ = v.BindPFlag("replay.db_path", flags.Lookup("db"))
	_ = v.BindPFlag("replay.input", flags.Lookup("input"))
	_ = v.BindPFlag("replay.output", flags.Lookup("output"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	cfg, err := config.LoadFrom(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Results may go to stdout, so logs go to stderr
	log := logger.NewWithOutput(cfg.LogLevel, os.Stderr)

	if err := run(cfg.Replay, log); err != nil {
		log.WithError(err).Error("Replay failed")
		os.Exit(1)
	}
}

func run(cfg config.ReplayConfig, log *logger.Logger) error {
	store, err := ledger.OpenLevelDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	in, closeIn, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("db_path", cfg.DBPath).WithField("input", cfg.Input).Info("Replaying transaction log")
	summary, err := replay.NewReplayer(store, log, nil).Run(ctx, in, out)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		log.WithField("failed", summary.Failed).Warn("Some transactions failed")
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open transaction log: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create result log: %w", err)
	}
	return f, func() { f.Close() }, nil
}
