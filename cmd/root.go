package cmd

import (
	"fmt"
	"os"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "illumio-monitoring-tool",
	Short: "Illumio PCE / ServiceNow CMDB Monitoring Tool",
	Long: `Illumio Monitoring Tool reconciles the Illumio PCE workload inventory
against the ServiceNow CMDB server inventory to measure deployment coverage,
detect shadow IT, and report agent health.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
