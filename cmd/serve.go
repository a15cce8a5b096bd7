package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for case processing and ledger queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := newRouter(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Bool("demo_mode", env.DemoMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"demo_mode": env.DemoMode,
		})
	})

	r.Get("/cases", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, env.Pipeline.Cases())
	})

	r.Get("/cases/{caseID}", func(w http.ResponseWriter, req *http.Request) {
		caseID := chi.URLParam(req, "caseID")
		c, ok := env.Pipeline.Case(caseID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("case %s not found", caseID),
			})
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	// Processing is synchronous: the response carries the full pipeline
	// trace, including the stored decision record.
	r.Post("/cases/{caseID}/process", func(w http.ResponseWriter, req *http.Request) {
		caseID := chi.URLParam(req, "caseID")
		store := req.URL.Query().Get("store") != "false"

		result := env.Pipeline.ProcessCase(req.Context(), caseID, store)

		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
			if result.Case == nil {
				status = http.StatusNotFound
			}
		}
		writeJSON(w, status, result)
	})

	r.Get("/decisions", func(w http.ResponseWriter, req *http.Request) {
		if level := req.URL.Query().Get("risk"); level != "" {
			decisions, err := env.Ledger.GetByRiskLevel(req.Context(), level)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, decisions)
			return
		}

		decisions, err := env.Ledger.GetAll(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decisions)
	})

	r.Get("/decisions/stats", func(w http.ResponseWriter, req *http.Request) {
		stats, err := env.Ledger.Statistics(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
