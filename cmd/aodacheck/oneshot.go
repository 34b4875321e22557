package main

import (
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one page and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			rep, err := an.Analyze(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func newSimulateCmd() *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "simulate <url>",
		Short: "Render a page through vision impairment simulations",
		Long: `Captures one screenshot per requested vision profile. Without --types every
public profile is rendered; see "aodacheck vision-types" for the ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			sr, err := an.Simulate(ctx, args[0], types)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sr)
		},
	}
	cmd.Flags().StringSliceVarP(&types, "types", "t", nil, "comma-separated vision profile ids")
	return cmd
}

func newVisionTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vision-types",
		Short: "List the vision impairment profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), an.VisionTypes())
		},
	}
}

func newNarrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "narrate <url>",
		Short: "Print a screen reader narration of a page's main content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}
			n, err := an.Narrate(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}
}
