package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "taskpad/api"
	requestSpanName = "http.request"
	requestLogMsg   = "http.request"
	metricsKey      = "requestMetrics"
)

type requestMetrics struct {
	logger        *log.Logger
	start         time.Time
	span          trace.Span
	route         string
	method        string
	storeDuration time.Duration
	tasksReturned int
	userID        string
	errorStage    string
	err           error
}

func (m *requestMetrics) ObserveStore(d time.Duration) {
	if d <= 0 {
		return
	}
	m.storeDuration += d
}

func (m *requestMetrics) SetTasksReturned(n int) {
	if n < 0 {
		n = 0
	}
	m.tasksReturned = n
}

func (m *requestMetrics) SetUser(id string) { m.userID = id }

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *requestMetrics) SetError(err error) { m.err = err }

// Log ends the span and writes the request entry.
func (m *requestMetrics) Log(status int, err error) {
	if err == nil {
		err = m.err
	}
	total := durationToMillis(time.Since(m.start))

	attrs := []attribute.KeyValue{
		attribute.String("http.route", m.route),
		attribute.String("http.method", m.method),
		attribute.Int("http.status_code", status),
		attribute.Float64("taskpad.total_ms", total),
	}
	if m.storeDuration > 0 {
		attrs = append(attrs, attribute.Float64("taskpad.store_ms", durationToMillis(m.storeDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("taskpad.error_stage", m.errorStage))
	}
	if m.span != nil {
		m.span.SetAttributes(attrs...)
		if status >= http.StatusInternalServerError || (err != nil && status < http.StatusBadRequest) {
			desc := http.StatusText(status)
			if err != nil {
				desc = err.Error()
				m.span.RecordError(err)
			}
			m.span.SetStatus(codes.Error, desc)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"route":    m.route,
		"method":   m.method,
		"status":   status,
		"total_ms": total,
	}
	if m.storeDuration > 0 {
		fields["store_ms"] = durationToMillis(m.storeDuration)
	}
	if m.tasksReturned > 0 {
		fields["tasks_returned"] = m.tasksReturned
	}
	if m.userID != "" {
		fields["user"] = m.userID
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
	}
	m.logger.WithFields(fields).Log(levelForStatus(status, err), requestLogMsg)
}

func levelForStatus(status int, err error) log.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return log.ErrorLevel
	case status >= http.StatusBadRequest:
		return log.WarnLevel
	case err != nil:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

// requestMetricsMiddleware opens one span and one log entry per request.
func requestMetricsMiddleware(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}
			ctx, span := otel.Tracer(tracerName).Start(req.Context(), requestSpanName,
				trace.WithSpanKind(trace.SpanKindServer))
			c.SetRequest(req.WithContext(ctx))

			m := &requestMetrics{
				logger: logger,
				start:  time.Now(),
				span:   span,
				route:  route,
				method: req.Method,
			}
			c.Set(metricsKey, m)

			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			m.Log(status, err)
			return err
		}
	}
}

func metricsFrom(c echo.Context) *requestMetrics {
	m, _ := c.Get(metricsKey).(*requestMetrics)
	return m
}
