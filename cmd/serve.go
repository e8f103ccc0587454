package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dashspec-cli/internal/dataquality"
	"github.com/sells-group/dashspec-cli/internal/engine"
	"github.com/sells-group/dashspec-cli/internal/ir"
	"github.com/sells-group/dashspec-cli/internal/loader"
	"github.com/sells-group/dashspec-cli/internal/model"
	"github.com/sells-group/dashspec-cli/internal/spec"
	"github.com/sells-group/dashspec-cli/internal/validate"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve validation and execution over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache := loader.NewCache(time.Duration(cfg.Data.CacheTTLSecs)*time.Second, nil)
		ld := loader.New(loader.SamplingPolicy{
			LargeRows:       cfg.Data.LargeRows,
			HugeRows:        cfg.Data.HugeRows,
			SampleSize:      cfg.Data.SampleSize,
			LargeSampleSize: cfg.Data.LargeSampleSize,
			Seed:            cfg.Data.SampleSeed,
		}, cache)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/validate", handleValidate)
		r.Post("/api/execute", handleExecute(ld))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// handleValidate validates a spec posted as raw YAML and returns the
// violations after policy filtering.
func handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}

	doc, err := spec.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	violations := validate.Validate(doc, defaultPolicy())
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      !model.HasBlocking(violations),
		"violations": violations,
	})
}

type executeRequest struct {
	Spec    string         `json:"spec"`
	Filters map[string]any `json:"filters"`
}

// handleExecute runs the full pipeline for a spec posted as JSON with the
// YAML text inline, sharing the server's loader cache across requests.
func handleExecute(ld *loader.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		doc, err := spec.Parse([]byte(req.Spec))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}

		violations := validate.Validate(doc, defaultPolicy())
		if model.HasBlocking(violations) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "spec has blocking violations",
				"violations": violations,
			})
			return
		}

		built := ir.Build(doc.Spec)
		tbl, _, err := ld.Load(r.Context(), built.DataSourcePath, loader.Options{})
		if err != nil {
			writeExecError(w, err)
			return
		}

		var report *model.DataQualityReport
		if built.DataQuality != nil {
			processed, rep := dataquality.New(built.DataQuality).Process(tbl)
			tbl = processed
			report = &rep
		}

		eng := engine.New(cfg.Execute.PageWorkers)
		results, err := eng.Execute(r.Context(), built, tbl, engine.Inputs{Filters: req.Filters})
		if err != nil {
			writeExecError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"results":             results,
			"data_quality_report": report,
		})
	}
}

// writeExecError returns the classified error kind plus its repair hints.
func writeExecError(w http.ResponseWriter, err error) {
	ee := engine.Classify(err)
	status := http.StatusInternalServerError
	if ee.Kind == engine.ErrMissingFile {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]any{
		"error":        ee.Message,
		"kind":         ee.Kind,
		"repair_hints": ee.RepairHints(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
