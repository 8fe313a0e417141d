package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/drive-in-checkout/internal/logging"
)

// RequestObserver records request metrics.
type RequestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

// RequestLogger assigns a request ID (reusing X-Request-ID when sent),
// stores a request scoped logger in the request context and logs one line
// per request.
func RequestLogger(log logrus.FieldLogger, obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			entry := log.WithFields(logrus.Fields{"request_id": rid, "method": req.Method, "path": c.Path()})
			c.SetRequest(req.WithContext(logging.ToContext(req.Context(), entry)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			if obs != nil {
				obs.ObserveRequest(c.Path(), status, elapsed)
			}
			fields := logrus.Fields{"status": status, "latency_ms": elapsed.Milliseconds(), "remote_ip": c.RealIP()}
			if id, ok := AccountID(c); ok {
				fields["account_id"] = id
			}
			e := entry.WithFields(fields)
			switch {
			case status >= 500:
				e.Error("request")
			case status >= 400:
				e.Warn("request")
			default:
				e.Info("request")
			}
			return nil
		}
	}
}
