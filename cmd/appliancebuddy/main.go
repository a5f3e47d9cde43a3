package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "appliance-buddy ", log.LstdFlags)

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config/config.yaml"
	}

	rootCmd := &cobra.Command{
		Use:           "appliancebuddy",
		Short:         "Appliance warranty and maintenance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfig, "path to the YAML configuration file")

	rootCmd.AddCommand(
		serveCmd(logger),
		refreshCmd(logger),
		seedCmd(logger),
		migrateCmd(logger),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
