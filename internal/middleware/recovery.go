// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer catches panics in downstream handlers, logs the stack trace,
// and returns a JSON 500 instead of crashing the server. http.ErrAbortHandler
// is re-raised so net/http can drop the connection quietly.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			attrs := []any{
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", chimw.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			}
			if sess := SessionFromCtx(r.Context()); sess != nil {
				attrs = append(attrs, "tenant_id", sess.TenantID)
			}
			slog.Error("panic recovered", attrs...)

			// An upgraded editor connection has no HTTP response left to write.
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				return
			}
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}()

		next.ServeHTTP(w, r)
	})
}
