package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/satonic/satonic-admin/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "satonic-admin",
	Short: "Satonic admin is the operator console for the Satonic NFT backend",
	Long: `Satonic admin serves a browser console for managing tenants, collections,
NFTs, assets and IPFS pins held by the Satonic backend, and offers a few
session and download commands for the terminal.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var cfgFilePath string

const (
	ConfigFileName      = ".satonic-admin"
	ConfigFileExtension = ".yaml"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFilePath, "config", "", "config file (default is $CONFIG_FILE, then $HOME/.satonic-admin.yaml, then configs/config.json)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file the way the flag help describes
func loadConfig() (*config.Config, error) {
	if cfgFilePath != "" {
		return config.LoadFile(cfgFilePath)
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return config.Load()
	}

	home, err := homedir.Dir()
	if err == nil {
		candidate := filepath.Join(home, ConfigFileName+ConfigFileExtension)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return config.LoadFile(candidate)
		}
	}
	return config.Load()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
