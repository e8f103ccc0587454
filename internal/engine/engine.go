// Package engine executes a built IR against a loaded table: per page it
// applies the runtime filter inputs, then computes each declared metric via
// optional sub-filter plus a null-aware aggregation. Pages are independent
// and run through a bounded worker pool; results come back in declaration
// order.
package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/table"
)

// Inputs carries the runtime values for page filters, keyed by filter ID.
type Inputs struct {
	Filters map[string]any `json:"filters"`
}

// Results is the outcome of executing every page of a dashboard.
type Results struct {
	DashboardID string       `json:"dashboard_id"`
	Pages       []PageResult `json:"pages"`
}

// PageResult holds one page's computed metrics and its filtered table. The
// table is for downstream consumers (export, serving) and is not part of the
// JSON form.
type PageResult struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Metrics map[string]any `json:"metrics"`
	Rows    int            `json:"rows"`

	Data *table.Table `json:"-"`
}

// Engine executes IRs. Workers bounds page-level parallelism; zero or
// negative means one page at a time.
type Engine struct {
	workers int
}

// New creates an engine with the given page worker count.
func New(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// Execute runs every page of the IR against the table. The input table is
// never mutated; each page filters its own view. Pages run concurrently up
// to the worker limit and the first page error cancels the rest.
func (e *Engine) Execute(ctx context.Context, ir *model.IR, tbl *table.Table, inputs Inputs) (*Results, error) {
	results := &Results{
		DashboardID: ir.DashboardID,
		Pages:       make([]PageResult, len(ir.Pages)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for idx, page := range ir.Pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pr, err := e.executePage(page, tbl, inputs)
			if err != nil {
				return err
			}
			results.Pages[idx] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("engine: execution complete",
		zap.String("dashboard_id", ir.DashboardID),
		zap.Int("pages", len(results.Pages)),
	)
	return results, nil
}

func (e *Engine) executePage(page model.IRPage, tbl *table.Table, inputs Inputs) (PageResult, error) {
	pr := PageResult{
		ID:      page.ID,
		Title:   page.Title,
		Metrics: make(map[string]any, len(page.Metrics)),
	}

	filtered := tbl
	for _, f := range page.Filters {
		value, ok := inputs.Filters[f.ID]
		if !ok {
			continue
		}
		var err error
		filtered, err = applyPageFilter(filtered, f, value)
		if err != nil {
			return PageResult{}, err
		}
	}
	pr.Data = filtered
	pr.Rows = filtered.NumRows()

	for _, m := range page.Metrics {
		value, err := e.computeMetric(filtered, m)
		if err != nil {
			return PageResult{}, err
		}
		pr.Metrics[m.ID] = value
	}

	zap.L().Debug("engine: page executed",
		zap.String("page_id", page.ID),
		zap.Int("rows", pr.Rows),
		zap.Int("metrics", len(pr.Metrics)),
	)
	return pr, nil
}

func (e *Engine) computeMetric(tbl *table.Table, m model.Metric) (any, error) {
	scope := tbl
	if m.Filter != nil {
		var err error
		scope, err = applyMetricFilter(scope, m.Filter)
		if err != nil {
			return nil, err
		}
	}

	col := scope.Column(m.Field)
	if col == nil {
		return nil, execErrorf(ErrMissingField, "metric %q references field %q not present in data", m.ID, m.Field)
	}
	return aggregate(col, m.Aggregation)
}
