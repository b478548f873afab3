package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var resolveVerbose bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the resolved homepage configuration as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closer, err := bootstrap()
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.resolver.ResolveDetailed(ctx)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if !resolveVerbose {
			return enc.Encode(res.Config)
		}
		issues := make([]string, 0, len(res.Issues))
		for _, issue := range res.Issues {
			issues = append(issues, issue.Error())
		}
		return enc.Encode(map[string]any{
			"source":     res.Source,
			"stale":      res.Stale,
			"issues":     issues,
			"resolvedAt": res.ResolvedAt,
			"config":     res.Config,
		})
	},
}

func init() {
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "include the source, staleness and issues")
}
