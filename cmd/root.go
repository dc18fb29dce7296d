package cmd

import (
	"fmt"
	"os"

	"Bt1QRadio/config"
	"Bt1QRadio/logger"
	"Bt1QRadio/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "1qradio",
	Short: "1QRadio is an internet radio appliance service.",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})
	server.Start()
}
