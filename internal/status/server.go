// Package status is the optional observability surface for long-running watch
// loops: health, prometheus metrics, and a read-only view of the ledger.
package status

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/resy-notifier/internal/metrics"
	"github.com/example/resy-notifier/internal/store"
)

type Server struct{ e *echo.Echo }

func NewServer(st *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	e.GET("/v1/records", listRecordsHandler(st))

	return &Server{e: e}
}

func listRecordsHandler(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		recs, err := st.List()
		if err != nil {
			log.Errorf("list ledger records: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "ledger read failed"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(recs),
			"records": recs,
		})
	}
}

func (s *Server) Start(addr string) error { return s.e.Start(addr) }
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
