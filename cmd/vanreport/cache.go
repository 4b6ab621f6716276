package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the offline asset cache",
	}
	cmd.AddCommand(newCacheListCmd(c), newCacheClearCmd(c))
	return cmd
}

func newCacheListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache versions and their entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			cache, err := a.OpenCache(ctx)
			if err != nil {
				return err
			}
			names, err := cache.Keys(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tENTRIES\tCURRENT")
			for _, name := range names {
				container, err := cache.Open(ctx, name)
				if err != nil {
					return err
				}
				keys, err := container.Keys(ctx)
				if err != nil {
					return err
				}
				current := ""
				if name == a.Config.Cache.Version {
					current = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", name, len(keys), current)
			}
			return tw.Flush()
		},
	}
}

func newCacheClearCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stale cache versions (or every version with --all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			cache, err := a.OpenCache(ctx)
			if err != nil {
				return err
			}
			names, err := cache.Keys(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				if name == a.Config.Cache.Version && !all {
					continue
				}
				if _, err := cache.Delete(ctx, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also delete the current version")
	return cmd
}
