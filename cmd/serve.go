package main

import (
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

	"github.com/cryoscope/snowkit/internal/classify"
	"github.com/cryoscope/snowkit/internal/survey"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the survey HTTP API",
	Long:  "Serves site classifications, measurement queries, and pivot summaries over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(st survey.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/sites", func(w http.ResponseWriter, req *http.Request) {
		sites, err := st.ListSites(req.Context())
		if err != nil {
			serveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sites)
	})

	r.Get("/sites/{id}/classes", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		veg, depth := classify.Site(id)

		resp := map[string]any{
			"site_id":    id,
			"classified": veg != classify.VegUnknown && depth != classify.DepthUnknown,
		}
		if veg != classify.VegUnknown {
			resp["vegetation"] = veg
		}
		if depth != classify.DepthUnknown {
			resp["depth"] = depth
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/pivot", func(w http.ResponseWriter, req *http.Request) {
		filter, err := filterFromQuery(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		ms, err := st.ListMeasurements(req.Context(), filter)
		if err != nil {
			serveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, survey.Pivot(ms))
	})

	return r
}

// filterFromQuery builds a measurement filter from pivot query parameters.
func filterFromQuery(req *http.Request) (survey.Filter, error) {
	filter := survey.Filter{
		SiteID:     req.URL.Query().Get("site"),
		Instrument: req.URL.Query().Get("instrument"),
		Limit:      1_000_000,
	}

	if from := req.URL.Query().Get("from"); from != "" {
		t, err := parseTimestamp(from)
		if err != nil {
			return survey.Filter{}, eris.Wrap(err, "parse from")
		}
		filter.From = &t
	}
	if to := req.URL.Query().Get("to"); to != "" {
		t, err := parseTimestamp(to)
		if err != nil {
			return survey.Filter{}, eris.Wrap(err, "parse to")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &t
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func serveError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
