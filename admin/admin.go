// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operational HTTP endpoints of the node.
package admin

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/dpos/log"
	"github.com/vechain/dpos/metrics"
)

var (
	logger = log.WithContext("pkg", "admin")

	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("admin_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec(
		"admin_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs,
	)
)

// HTTPHandler returns the admin handler. prod may be nil on a node without production.
func HTTPHandler(logLevel *slog.LevelVar, prod Production) http.Handler {
	router := mux.NewRouter()
	NewLogLevel(logLevel).Mount(router, "/admin/loglevel")
	if prod != nil {
		NewProducer(prod).Mount(router, "/admin/producer")
	}
	if h := metrics.HTTPHandler(); h != nil {
		router.Path("/metrics").Methods(http.MethodGet).Name("metrics").Handler(h)
	}
	router.Use(metricsMiddleware)
	return handlers.CompressHandler(router)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware counts requests and their duration per named route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := "unknown"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := map[string]string{"name": name, "code": strconv.Itoa(rec.status), "method": r.Method}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(start).Milliseconds(), labels)
	})
}

// StartServer serves handler on addr. It returns the base url of the server and a function stopping it.
func StartServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		if err := g.Wait(); err != nil {
			logger.Warn("admin server stopped", "err", err)
		}
	}, nil
}
