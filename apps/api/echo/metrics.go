package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests        *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	attendanceMarks *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentora",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route path and status code.",
		}, []string{"method", "path", "code"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentora",
			Name:      "import_rows_total",
			Help:      "Student import rows by outcome.",
		}, []string{"outcome"}),
		attendanceMarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentora",
			Name:      "attendance_marks_total",
			Help:      "Saved attendance marks by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.requests, m.importRows, m.attendanceMarks)
	return m
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}
		path := ctx.Path()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(ctx.Request().Method, path, strconv.Itoa(ctx.Response().Status)).Inc()
		return nil
	}
}
