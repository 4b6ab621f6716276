package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-vanreport/pkg/templates"
)

func newTemplatesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage saved van templates",
	}
	cmd.AddCommand(
		newTemplatesListCmd(c),
		newTemplatesSaveCmd(c),
		newTemplatesShowCmd(c),
		newTemplatesDeleteCmd(c),
	)
	return cmd
}

func newTemplatesListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved templates in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			list := a.Templates.List(cmd.Context())
			if asJSON {
				if list == nil {
					list = []templates.Template{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVANS")
			for _, tpl := range list {
				fmt.Fprintf(tw, "%s\t%s\n", tpl.Name, strings.Join(tpl.Vans, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON collection")
	return cmd
}

func newTemplatesSaveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME VAN...",
		Short: "Save or replace a template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			tpl, err := a.Templates.Save(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q with %d vans\n", tpl.Name, len(tpl.Vans))
			return nil
		},
	}
}

func newTemplatesShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print the vans of a template, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			vans, ok := a.Templates.Load(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			for _, van := range vans {
				fmt.Fprintln(cmd.OutOrStdout(), van)
			}
			return nil
		},
	}
}

func newTemplatesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := a.Templates.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("template %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}
}
