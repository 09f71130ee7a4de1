package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

//The log Middleware has as responsibility to create a request log for the
//operational endpoints. It takes a healthcheck function because health
//checks should not follow other log semantics.
func LogMiddleware(requestLogLvl slog.Level, hc HealthChecker) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			if r.Body != nil {
				defer r.Body.Close()
			}

			ctx := r.Context()
			logLvl := requestLogLvl
			wasHealthCheck := hc.DoHealthcheckIfNeeded(w, r)
			if wasHealthCheck {
				//For health checks there might be a different level at which logging should occur
				logLvl = hc.GetHCLogLvl()
			}

			slog.LogAttrs(
				ctx,
				logLvl,
				"Request start",
				slog.String("RequestURI", r.RequestURI),
				slog.String("RemoteAddr", r.RemoteAddr),
			)
			defer func() {
				slog.LogAttrs(
					ctx,
					logLvl,
					"Request end",
					slog.String("RequestURI", r.RequestURI),
					slog.Int64("Total ms", time.Since(startTime).Milliseconds()),
				)
			}()

			if !wasHealthCheck {
				next.ServeHTTP(w, r)
			}
		}
	}
}
