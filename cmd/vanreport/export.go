package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-vanreport/pkg/report"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		date     string
		template string
		vans     []string
		dir      string
		html     bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a report and export it as a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				a.Config.Export.Dir = dir
			}

			if template != "" {
				stored, ok := a.Templates.Load(ctx, template)
				if !ok {
					return fmt.Errorf("template %q not found", template)
				}
				vans = append(stored, vans...)
			}
			if date == "" {
				date = time.Now().Format(time.DateOnly)
			}
			if _, err := time.Parse(time.DateOnly, date); err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
			}

			state, err := report.NewState(date, nil).Apply(report.ReplaceVans{Vans: vans})
			if err != nil {
				return err
			}

			if html {
				_, err := a.Page.RenderReport(state, cmd.OutOrStdout())
				return err
			}

			if strings.TrimSpace(a.Config.Export.Command) == "" {
				return errors.New("no renderer command configured (set export.command or VANREPORT_EXPORT_COMMAND)")
			}
			exporter, err := a.Exporter()
			if err != nil {
				return err
			}
			result, err := a.ExportState(ctx, exporter, state)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "date", "", "report date, YYYY-MM-DD (default today)")
	f.StringVarP(&template, "template", "t", "", "start from a saved template")
	f.StringSliceVar(&vans, "van", nil, "van to add as a row (repeatable)")
	f.StringVar(&dir, "dir", "", "download directory (default from config)")
	f.BoolVar(&html, "html", false, "print the report document instead of capturing it")
	return cmd
}
