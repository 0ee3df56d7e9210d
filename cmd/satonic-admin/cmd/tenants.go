package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/listing"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/models"
)

var (
	tenantsCursor string
	tenantName    string
	tenantSlug    string
	tenantEmail   string
)

func init() {
	tenantsListCmd.Flags().StringVar(&tenantsCursor, "cursor", "", "page cursor returned by a previous listing")

	tenantsCreateCmd.Flags().StringVar(&tenantName, "name", "", "tenant name")
	tenantsCreateCmd.Flags().StringVar(&tenantSlug, "slug", "", "tenant slug")
	tenantsCreateCmd.Flags().StringVar(&tenantEmail, "email", "", "contact email")
	tenantsCreateCmd.MarkFlagRequired("name")
	tenantsCreateCmd.MarkFlagRequired("slug")

	tenantsCmd.AddCommand(tenantsListCmd)
	tenantsCmd.AddCommand(tenantsCreateCmd)
	rootCmd.AddCommand(tenantsCmd)
}

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List and create tenants",
}

var tenantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list := listing.NewController(listing.Options[models.Tenant]{
			PageSize: a.cfg.Listing.PageSize,
			List:     a.client.ListTenants,
			Kind:     listing.ActionArchive,
			Act:      a.client.ArchiveTenant,
			Cursor:   listing.Cursor{Current: tenantsCursor},
			Logger:   logging.ModuleLogger(a.provider, "cli"),
		})
		defer list.Close()

		if err := list.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		if list.EmptyState() != listing.EmptyStateNone {
			printf(cmd, "No tenants\n")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSLUG\tSTATUS\tCREATED")
		for _, t := range list.Items() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Slug, t.Status, t.CreatedAt)
		}
		w.Flush()

		if next, ok := list.NextCursor(); ok {
			printf(cmd, "\nNext page: --cursor %s\n", next.Current)
		}
		return nil
	},
}

var tenantsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		tenant, err := api.Await(func(cb api.Callbacks[models.Tenant]) {
			a.client.CreateTenant(cmd.Context(), models.CreateTenantRequest{
				Name:         tenantName,
				Slug:         tenantSlug,
				ContactEmail: tenantEmail,
			}, cb)
		})
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		printf(cmd, "Tenant %s created with id %s\n", tenant.Name, tenant.ID)
		return nil
	},
}
