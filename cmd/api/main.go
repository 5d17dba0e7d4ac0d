package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"vrppd/internal/api"
	"vrppd/internal/metrics"
)

func main() {
	log := logrus.WithField("component", "cmd/api")

	srvDeps, err := api.NewServer()
	if err != nil {
		log.WithError(err).Fatal("failed to init server")
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	mux.HandleFunc("/v1/problems", srvDeps.ProblemsHandler)
	mux.HandleFunc("/v1/problems/", srvDeps.ProblemByIDHandler)
	mux.HandleFunc("/v1/runs/", srvDeps.RunByIDHandler)

	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := srvDeps.Cfg.ListenAddr

	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(log, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if srvDeps.Pub != nil {
		worker := srvDeps.NewWebhookWorker()
		worker.Start()
	}

	log.WithField("addr", addr).Info("API listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server error")
	}
}

func logMiddleware(log *logrus.Entry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		}).Info("request")
	})
}
