package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hxstate/internal/errors"
)

type checkReport struct {
	Stores   int             `json:"stores"`
	Bindings int             `json:"bindings"`
	Effects  int             `json:"effects"`
	Skipped  []string        `json:"skipped,omitempty"`
	Failures []effectFailure `json:"failures,omitempty"`
}

func checkCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <document>",
		Short: "Run binding setup and report what was found",
		Long: `Parse every state, bind and effect attribute in a document, run each
effect once and report the result.

The document is a file path, '-' for stdin, or s3://bucket/key.

Examples:
  hxstate check index.html
  hxstate check --policy=skip --json index.html
  cat index.html | hxstate check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report := checkReport{
				Stores:   p.result.Stores,
				Bindings: p.result.Bindings,
				Effects:  p.result.Effects,
				Failures: p.failures,
			}
			for _, s := range p.result.Skipped {
				report.Skipped = append(report.Skipped, s.Error())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "stores:   %d\n", report.Stores)
				fmt.Fprintf(out, "bindings: %d\n", report.Bindings)
				fmt.Fprintf(out, "effects:  %d\n", report.Effects)
				for _, s := range report.Skipped {
					fmt.Fprintf(out, "skipped:  %s\n", s)
				}
				for _, f := range report.Failures {
					fmt.Fprintf(out, "failed:   %s: %s\n", f.Effect, f.Error)
				}
			}

			if strict && (len(report.Skipped) > 0 || len(report.Failures) > 0) {
				return errors.New("H100").
					WithDetail(fmt.Sprintf("%d skipped, %d effect failures", len(report.Skipped), len(report.Failures)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when anything was skipped or an effect failed")

	return cmd
}
