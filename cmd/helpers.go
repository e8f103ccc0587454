package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/store"
)

// initStore opens the configured run-history backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// defaultPolicy builds the validation policy from config; a policy declared
// in the spec itself still wins.
func defaultPolicy() *model.ValidationPolicy {
	if cfg == nil {
		return nil
	}
	return &model.ValidationPolicy{
		Strictness:    cfg.Validate.Strictness,
		SuppressCodes: cfg.Validate.SuppressCodes,
	}
}

// formatViolations writes violations as an aligned table with repair text.
func formatViolations(out io.Writer, violations []model.Violation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEVERITY\tCODE\tPATH\tMESSAGE")
	for _, v := range violations {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Severity, v.Code, v.Path, v.Message)
		if v.Repair != "" {
			_, _ = fmt.Fprintf(w, "\t\t\t  fix: %s\n", v.Repair)
		}
	}
	_ = w.Flush()
}
