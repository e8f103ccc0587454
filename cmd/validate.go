package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/spec"
	"github.com/sells-group/dashspec-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <spec.yaml>",
	Short: "Validate a dashboard spec",
	Long:  "Runs schema and semantic validation against a spec file and reports violations. Exits nonzero when blocking violations remain after policy filtering.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := spec.ParseFile(args[0])
		if err != nil {
			return err
		}

		policy := defaultPolicy()
		if s, _ := cmd.Flags().GetString("strictness"); s != "" {
			policy.Strictness = s
		}
		if codes, _ := cmd.Flags().GetStringSlice("suppress"); len(codes) > 0 {
			policy.SuppressCodes = append(policy.SuppressCodes, codes...)
		}

		violations := validate.Validate(doc, policy)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(violations); err != nil {
				return eris.Wrap(err, "validate: encode violations")
			}
		} else if len(violations) == 0 {
			fmt.Println("Spec is valid.")
		} else {
			formatViolations(os.Stdout, violations)
		}

		if model.HasBlocking(violations) {
			return eris.Errorf("spec has %d blocking violation(s)", countBlocking(violations))
		}
		return nil
	},
}

func countBlocking(violations []model.Violation) int {
	n := 0
	for _, v := range violations {
		if v.Blocking() {
			n++
		}
	}
	return n
}

func init() {
	validateCmd.Flags().String("strictness", "", "override policy strictness (relaxed, moderate, strict)")
	validateCmd.Flags().StringSlice("suppress", nil, "violation codes to suppress")
	validateCmd.Flags().Bool("json", false, "emit violations as JSON")
	rootCmd.AddCommand(validateCmd)
}
