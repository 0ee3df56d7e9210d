package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/models"
)

var downloadOut string

func init() {
	downloadAssetCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "output file (default is the server-provided filename)")
	downloadCmd.AddCommand(downloadAssetCmd)
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download files from the backend",
}

var downloadAssetCmd = &cobra.Command{
	Use:   "asset <asset-id>",
	Short: "Download an asset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		assetID := args[0]
		binary, err := api.Await(func(cb api.Callbacks[models.Binary]) {
			a.client.DownloadAsset(cmd.Context(), assetID, cb)
		})
		if err != nil {
			return fmt.Errorf("failed to download asset %s: %w", assetID, err)
		}

		path := downloadOut
		if path == "" {
			path = binary.Filename
		}
		if path == "" {
			path = assetID
		}
		if err := os.WriteFile(path, binary.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		printf(cmd, "Saved %d bytes to %s\n", len(binary.Data), path)
		return nil
	},
}
