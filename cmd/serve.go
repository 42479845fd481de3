package main

import (
	"context"
	"encoding/json"
	"errors"
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

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initEngine(ctx, cfg, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(env, cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// searchResponse is the body of a successful POST /v1/search.
type searchResponse struct {
	Records []model.BusinessRecord `json:"records"`
	Stats   model.RunStats         `json:"stats"`
}

func buildRouter(env *searchEnv, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", env.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sources", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, env.Engine.Sources())
		})
		r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, env.Engine.GetStats())
		})
		r.Post("/search", func(w http.ResponseWriter, req *http.Request) {
			var q model.SearchQuery
			if err := json.NewDecoder(req.Body).Decode(&q); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			records, stats, err := env.run(req.Context(), q)
			switch {
			case errors.Is(err, model.ErrInvalidQuery):
				writeError(w, http.StatusBadRequest, err.Error())
				return
			case errors.Is(err, search.ErrBudgetExceeded):
				writeError(w, http.StatusGatewayTimeout, err.Error())
				return
			case err != nil:
				zap.L().Error("search request failed", zap.String("query", q.Text()), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "search failed")
				return
			}

			if records == nil {
				records = []model.BusinessRecord{}
			}
			writeJSON(w, http.StatusOK, searchResponse{Records: records, Stats: stats})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
