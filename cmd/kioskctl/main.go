package main

import (
	"fmt"
	"log"
	"os"

	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	var configPath string
	rootCmd := &cobra.Command{
		Use:     "kioskctl",
		Short:   "Operator tool for the kiosk payment service",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("KIOSK_CONFIG_PATH"), "Path to the service config file")

	loadConfig := func() (*config.KioskConfig, error) {
		if configPath == "" {
			return nil, fmt.Errorf("config path is empty: pass --config or set KIOSK_CONFIG_PATH")
		}
		return config.Load(configPath)
	}

	rootCmd.AddCommand(assetsCmd(loadConfig))
	rootCmd.AddCommand(uriCmd(loadConfig))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
