package main

import (
	"context"
	"encoding/json"
	"fmt"
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

	"github.com/leadscope/lead-cli/internal/model"
)

var servePort int

type analyzeRequest struct {
	Profile    model.Profile `json:"profile"`
	BusinessID string        `json:"business_id"`
	Tier       model.Tier    `json:"tier"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) {
			var body analyzeRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Profile.Username == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "profile.username is required"})
				return
			}
			if body.BusinessID == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "business_id is required"})
				return
			}
			if !body.Tier.Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid tier %q", body.Tier)})
				return
			}

			// Create the run row synchronously so the caller gets an ID to
			// poll; the analysis itself continues in the background.
			run, err := env.Store.CreateRun(req.Context(), body.Profile.Username, body.BusinessID, body.Tier)
			if err != nil {
				zap.L().Error("create run failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create run"})
				return
			}

			go func() {
				if _, err := env.Analyzer.AnalyzeRun(ctx, run, body.Profile); err != nil {
					zap.L().Error("async analysis failed",
						zap.String("run_id", run.ID),
						zap.String("username", body.Profile.Username),
						zap.Error(err),
					)
				}
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"run_id": run.ID,
				"status": string(run.Status),
			})
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := env.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
