package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-vanreport/internal/prompt"
	"github.com/goliatone/go-vanreport/pkg/page"
	"github.com/goliatone/go-vanreport/pkg/report"
)

func newSessionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Fill in today's report interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.open(ctx)
			if err != nil {
				return err
			}

			driver := prompt.NewSurveyDriver(cmd.OutOrStdout())
			prompter := prompt.NewPrompter(driver)
			session, err := report.NewSession(a.Templates,
				report.WithConfirmer(prompter),
				report.WithAlerter(prompter),
				report.WithInitialState(page.TodayState(ctx)),
				report.WithSessionLogger(c.logger.Named("session")),
			)
			if err != nil {
				return err
			}

			var opts []prompt.ConsoleOption
			opts = append(opts, prompt.WithConsoleLogger(c.logger.Named("console")))
			if a.Config.Export.Command != "" {
				exporter, err := a.Exporter()
				if err != nil {
					return err
				}
				opts = append(opts, prompt.WithExport(func(ctx context.Context, state report.State) (string, error) {
					result, err := a.ExportState(ctx, exporter, state)
					if err != nil {
						return "", err
					}
					return result.Path, nil
				}))
			}

			console, err := prompt.NewConsole(driver, session, a.Templates, opts...)
			if err != nil {
				return err
			}
			if err := console.Run(ctx); err != nil && !errors.Is(err, prompt.ErrAborted) {
				return err
			}
			return nil
		},
	}
}
