package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/guaranteeops/reconbot/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var envFiles string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconbot",
	Short: "Reconciliation bot backed by certificate-exchanged AWS credentials",
	Long: `reconbot connects Slack operators to the daily reconciliation data.
It exchanges a client certificate for temporary AWS credentials, pulls the
daily report archives from S3 and the pending transactions from DynamoDB,
and serves the report workflow over Slack socket mode.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	logging.InitializeLogging(logging.EnvironmentLvl, nil, nil)
	rootCmd.PersistentFlags().StringVar(&envFiles, "dot-env", "etc/.env", "File paths to .env files comma separated")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reconbot.yaml)")
}

func loadEnvVarsFromDotEnv() {
	for _, dotEnv := range strings.Split(envFiles, ",") {
		if dotEnv == "skip" {
			slog.Info("Skip dotEnv filename", "filename", dotEnv)
			return
		}
		if dotEnv == "" {
			continue
		}
		err := godotenv.Load(dotEnv)
		if err != nil {
			dir, _ := os.Getwd()
			slog.Error("Error loading .env file", "cwd", dir, "filepath", dotEnv)
			os.Exit(1)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".reconbot" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".reconbot")
	}

	viper.SetEnvPrefix("RECONBOT")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	var startupCmd = strings.Join(os.Args, " ")
	slog.Info("Loading env vars from dotenv", "startup_cmd", startupCmd)
	loadEnvVarsFromDotEnv()
}
