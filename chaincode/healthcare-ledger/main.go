package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/medrex/healthcare-ledger/chaincode/healthcare-ledger/healthcareledger"
	"github.com/medrex/healthcare-ledger/pkg/config"
	"github.com/medrex/healthcare-ledger/pkg/logger"
	"github.com/medrex/healthcare-ledger/pkg/monitoring"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.WithField("version", version).Info("Starting healthcare ledger chaincode")

	metrics := monitoring.NewMetricsCollector("healthcare-ledger")
	health := monitoring.NewHealthManager("healthcare-ledger", version)

	var monitor *http.Server
	if cfg.Monitoring.Enabled {
		monitor = monitoring.NewServer(cfg.Monitoring.Address, cfg.Monitoring.MetricsPath, cfg.Monitoring.HealthPath, metrics, health)
		go func() {
			log.WithField("address", cfg.Monitoring.Address).Info("Monitoring server listening")
			if err := monitor.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Monitoring server failed")
			}
		}()
	}

	tracing, err := monitoring.NewTracingManager(context.Background(), monitoring.TracingConfig{
		Enabled:        cfg.Monitoring.Tracing.Enabled,
		Endpoint:       cfg.Monitoring.Tracing.Endpoint,
		ServiceName:    "healthcare-ledger",
		ServiceVersion: version,
		SampleRate:     cfg.Monitoring.Tracing.SampleRate,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize tracing")
	}

	chaincode, err := contractapi.NewChaincode(healthcareledger.NewSmartContract(log, metrics, tracing))
	if err != nil {
		log.WithError(err).Fatal("Failed to create healthcare ledger chaincode")
	}

	done := make(chan error, 1)
	go func() {
		done <- run(cfg, chaincode, log)
	}()
	health.MarkHealthy()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			health.MarkUnhealthy(err.Error())
			log.WithError(err).Error("Chaincode stopped")
		}
	case sig := <-quit:
		health.MarkUnhealthy("shutting down")
		log.WithField("signal", sig.String()).Info("Shutting down healthcare ledger chaincode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if monitor != nil {
		if err := monitor.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Monitoring server forced to shutdown")
		}
	}
	if err := tracing.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Failed to flush traces")
	}
}

// run starts the chaincode either under the peer or as an external service
// and blocks until it stops.
func run(cfg *config.Config, chaincode *contractapi.ContractChaincode, log *logger.Logger) error {
	if !cfg.Chaincode.IsServerMode() {
		log.Info("Starting chaincode under peer control")
		return chaincode.Start()
	}

	tlsProps, err := loadTLS(cfg.Chaincode.TLS)
	if err != nil {
		return err
	}

	server := &shim.ChaincodeServer{
		CCID:     cfg.Chaincode.ID,
		Address:  cfg.Chaincode.ServerAddress,
		CC:       chaincode,
		TLSProps: tlsProps,
	}
	log.WithField("address", cfg.Chaincode.ServerAddress).
		WithField("ccid", cfg.Chaincode.ID).
		WithField("tls", cfg.Chaincode.TLS.Enabled).
		Info("Starting chaincode server")
	return server.Start()
}

func loadTLS(cfg config.TLSConfig) (shim.TLSProperties, error) {
	if !cfg.Enabled {
		return shim.TLSProperties{Disabled: true}, nil
	}

	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS key: %w", err)
	}
	cert, err := os.ReadFile(cfg.CertFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS certificate: %w", err)
	}

	props := shim.TLSProperties{Key: key, Cert: cert}
	if cfg.ClientCAFile != "" {
		props.ClientCACerts, err = os.ReadFile(cfg.ClientCAFile)
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("failed to read client CA certificate: %w", err)
		}
	}
	return props, nil
}
