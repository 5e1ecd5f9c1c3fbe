package cmd

import (
	"context"
	"fmt"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/config"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/illumio"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/feature/servicenow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCmd verifies connectivity and credentials for both data sources.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connectivity to the Illumio PCE and ServiceNow",
	Long: `Performs a minimal authenticated request against each configured data
source and reports the result. The Illumio PCE must be reachable for the tool
to be usable; ServiceNow is optional.`,
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	if err := checkIllumio(ctx, cfg, l); err != nil {
		return err
	}
	checkServiceNow(ctx, cfg, l)
	return nil
}

func checkIllumio(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	if err := cfg.Illumio.Validate(); err != nil {
		return fmt.Errorf("illumio config: %w", err)
	}

	connector := illumio.New(cfg.Illumio, cfg.Retry, cfg.Normalization, l)
	defer connector.Close()

	if err := connector.TestConnection(ctx); err != nil {
		return fmt.Errorf("illumio connection failed: %w", err)
	}
	l.Info("Illumio PCE connection OK", zap.String("url", cfg.Illumio.PCEURL))

	health, err := connector.PCEHealth(ctx)
	if err != nil {
		l.Warn("PCE health endpoint unavailable", zap.Error(err))
		return nil
	}
	l.Info("PCE health", zap.ByteString("response", health))
	return nil
}

func checkServiceNow(ctx context.Context, cfg *config.Config, l *zap.Logger) {
	if err := cfg.ServiceNow.Validate(); err != nil {
		l.Warn("ServiceNow not configured", zap.Error(err))
		return
	}

	connector := servicenow.New(cfg.ServiceNow, cfg.Filtering, cfg.Retry, cfg.Normalization, l)
	defer connector.Close()

	if err := connector.TestConnection(ctx); err != nil {
		l.Warn("ServiceNow connection failed, runs will degrade to Illumio-only mode", zap.Error(err))
		return
	}
	l.Info("ServiceNow connection OK", zap.String("instance", cfg.ServiceNow.InstanceURL))
}
