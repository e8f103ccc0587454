package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/dataquality"
	"github.com/sells-group/dashspec-cli/internal/engine"
	"github.com/sells-group/dashspec-cli/internal/export"
	"github.com/sells-group/dashspec-cli/internal/ir"
	"github.com/sells-group/dashspec-cli/internal/loader"
	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/spec"
	"github.com/sells-group/dashspec-cli/internal/store"
	"github.com/sells-group/dashspec-cli/internal/validate"
)

var runCmd = &cobra.Command{
	Use:   "run <spec.yaml>",
	Short: "Validate, clean, and execute a dashboard spec",
	Long:  "Runs the full pipeline: parse, validate, build the IR, load the backing data, apply data-quality rules, and compute every page's filters and metrics.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		specPath := args[0]

		doc, err := spec.ParseFile(specPath)
		if err != nil {
			return err
		}

		violations := validate.Validate(doc, defaultPolicy())
		if model.HasBlocking(violations) {
			formatViolations(os.Stderr, violations)
			return eris.New("spec has blocking violations; fix them or relax the policy")
		}
		for _, v := range violations {
			zap.L().Warn("run: validation warning",
				zap.String("code", v.Code),
				zap.String("path", v.Path),
				zap.String("message", v.Message),
			)
		}

		built := ir.Build(doc.Spec)

		if filtersJSON, _ := cmd.Flags().GetString("filters"); filtersJSON != "" {
			probe := map[string]any{}
			if err := json.Unmarshal([]byte(filtersJSON), &probe); err != nil {
				return eris.Wrap(err, "run: parse --filters")
			}
		}

		var st store.Store
		var run *model.Run
		noStore, _ := cmd.Flags().GetBool("no-store")
		if !noStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			run, err = st.CreateRun(ctx, filepath.Base(specPath))
			if err != nil {
				return err
			}
		}

		results, report, err := executePipeline(ctx, cmd, built)
		if err != nil {
			if run != nil {
				if ferr := st.FailRun(ctx, run.ID, err); ferr != nil {
					zap.L().Warn("run: record failure", zap.Error(ferr))
				}
			}
			printRepairHints(err)
			return err
		}

		if run != nil {
			resultsJSON, merr := json.Marshal(results)
			if merr != nil {
				return eris.Wrap(merr, "run: marshal results")
			}
			if err := st.CompleteRun(ctx, run.ID, report, resultsJSON); err != nil {
				zap.L().Warn("run: record completion", zap.Error(err))
			}
		}

		return writeResults(cmd, results, report)
	},
}

// executePipeline loads the data, applies data-quality rules, and executes
// the IR.
func executePipeline(ctx context.Context, cmd *cobra.Command, built *model.IR) (*engine.Results, *model.DataQualityReport, error) {
	if built.DataSourcePath == "" {
		return nil, nil, eris.New("run: spec declares no data source path")
	}

	policy := loader.SamplingPolicy{
		LargeRows:       cfg.Data.LargeRows,
		HugeRows:        cfg.Data.HugeRows,
		SampleSize:      cfg.Data.SampleSize,
		LargeSampleSize: cfg.Data.LargeSampleSize,
		Seed:            cfg.Data.SampleSeed,
	}
	ld := loader.New(policy, nil)

	rowCap, _ := cmd.Flags().GetInt("row-cap")
	full, _ := cmd.Flags().GetBool("full")
	tbl, info, err := ld.Load(ctx, built.DataSourcePath, loader.Options{
		RowCap:    rowCap,
		ForceFull: full,
	})
	if err != nil {
		return nil, nil, engine.Classify(err)
	}
	if info.Sampled {
		fmt.Fprintf(os.Stderr, "Loaded sample of %d rows (%.1f%% of %d)\n",
			info.LoadedRows, info.SampleRatio*100, info.TotalRows)
	}

	var report *model.DataQualityReport
	if built.DataQuality != nil {
		processed, r := dataquality.New(built.DataQuality).Process(tbl)
		tbl = processed
		report = &r
	}

	eng := engine.New(cfg.Execute.PageWorkers)
	results, err := eng.Execute(ctx, built, tbl, engineInputs(cmd))
	if err != nil {
		return nil, report, err
	}
	return results, report, nil
}

func engineInputs(cmd *cobra.Command) engine.Inputs {
	inputs := engine.Inputs{Filters: map[string]any{}}
	filtersJSON, _ := cmd.Flags().GetString("filters")
	if filtersJSON != "" {
		// Already validated in RunE; a second parse cannot fail here.
		_ = json.Unmarshal([]byte(filtersJSON), &inputs.Filters)
	}
	return inputs
}

// writeResults sends results to stdout or the --out target in the requested
// format.
func writeResults(cmd *cobra.Command, results *engine.Results, report *model.DataQualityReport) error {
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		if strings.HasSuffix(out, ".xlsx") {
			format = "xlsx"
		} else {
			format = "json"
		}
	}

	switch format {
	case "xlsx":
		if out == "" {
			return eris.New("run: --out is required for xlsx output")
		}
		return export.WriteXLSX(out, results, report)
	case "json":
		if out == "" {
			return export.WriteJSON(os.Stdout, results)
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "run: create %s", out)
		}
		defer f.Close()
		return export.WriteJSON(f, results)
	default:
		return eris.Errorf("run: unknown format %q", format)
	}
}

// printRepairHints surfaces kind-specific guidance for execution failures.
func printRepairHints(err error) {
	ee := engine.Classify(err)
	hints := ee.RepairHints()
	if len(hints) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Execution failed (%s): %s\n", ee.Kind, ee.Message)
	for _, h := range hints {
		fmt.Fprintf(os.Stderr, "  - %s\n", h)
	}
}

func init() {
	runCmd.Flags().String("filters", "", `runtime filter inputs as JSON, e.g. '{"region":"EU","amount":[10,20]}'`)
	runCmd.Flags().String("out", "", "output file (default stdout)")
	runCmd.Flags().String("format", "", "output format: json or xlsx (inferred from --out when unset)")
	runCmd.Flags().Int("row-cap", 0, "cap loaded rows (overrides automatic sampling)")
	runCmd.Flags().Bool("full", false, "force a full load regardless of dataset size")
	runCmd.Flags().Bool("no-store", false, "do not record this run in the history store")
	rootCmd.AddCommand(runCmd)
}
