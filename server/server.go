package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/guaranteeops/reconbot/middleware"
	"github.com/minio/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Defines optional configuration for the operational server
type OpsServerOpts struct {
	//The default of 0 means no operational endpoints are exposed
	Port int

	//The loglevel at which request start and stop events are logged
	RequestLogLvl slog.Level

	//The healthchecker used
	Healthchecker middleware.HealthChecker
}

// StartOpsServer exposes /ping and /metrics in the background. It returns a
// WaitGroup that is done when the server stopped, a shutdown function, and
// the registry to hang application metrics on. A zero port disables the
// server and returns a usable registry anyway so the rest of the code never
// has to care.
func StartOpsServer(opts OpsServerOpts) (*sync.WaitGroup, func(context.Context) error, prometheus.Registerer) {
	// Create non-global registry.
	reg := prometheus.NewRegistry()

	if opts.Port == 0 {
		return &sync.WaitGroup{}, func(context.Context) error { return nil }, reg
	}

	// Add go runtime metrics and process collectors.
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthchecker := opts.Healthchecker
	if healthchecker == nil {
		healthchecker = middleware.NewPingPongHealthCheck(slog.LevelDebug)
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	handler := middleware.Chain(
		router.ServeHTTP,
		middleware.LogMiddleware(opts.RequestLogLvl, healthchecker),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		ReadHeaderTimeout: 3 * time.Second, //Protect against potential slowloris attack
		Handler:           handler,
	}

	serverDone := &sync.WaitGroup{}
	serverDone.Add(1)
	go func() {
		defer serverDone.Done()
		slog.Info("Started operational endpoints", "port", opts.Port)
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			slog.Error(err.Error())
		}
	}()

	return serverDone, srv.Shutdown, reg
}
