package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSlugCmd builds the list/create/delete commands shared by categories and genres.
func newSlugCmd(use, kind string) *cobra.Command {
	root := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Browse and manage %s", kind),
	}

	list := &cobra.Command{
		Use:   "list [search]",
		Short: fmt.Sprintf("List %s, optionally filtered by name", kind),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			ctx, cancel := commandContext()
			defer cancel()

			resp, err := newClient().ListSlugs(ctx, kind, search, page, pageSize)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
			if len(resp.Data) == 0 {
				fmt.Printf("No %s found.\n", kind)
				return nil
			}
			for _, item := range resp.Data {
				fmt.Printf("%-20s %s\n", item.Slug, item.Name)
			}
			printPage(resp.Page, resp.TotalPages, resp.Total)
			return nil
		},
	}
	addPageFlags(list)

	create := &cobra.Command{
		Use:   "create [slug] [name]",
		Short: fmt.Sprintf("Create one of the %s (admin only)", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			item, err := newClient().CreateSlug(ctx, kind, args[1], args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", use, err)
			}
			success("Created %s %q (%s)", use, item.Name, item.Slug)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [slug]",
		Short: fmt.Sprintf("Delete one of the %s (admin only)", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			if err := newClient().DeleteSlug(ctx, kind, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", use, err)
			}
			success("Deleted %s %s", use, args[0])
			return nil
		},
	}

	root.AddCommand(list, create, del)
	return root
}
