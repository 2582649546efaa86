package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
)

const app = "resumatch"

var (
	log *zap.Logger

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "resumatch scores CVs against a job description with Gemini",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := "info"
			if viper.GetBool("debug") {
				level = "debug"
			}
			format := "console"
			if viper.GetBool("json") {
				format = "json"
			}

			// stdout carries the ranking table.
			l, err := logger.New(level, format, "stderr")
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}
