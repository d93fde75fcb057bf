// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// apiCSP forbids active content and framing of API responses.
const apiCSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

// SecureHeaders adds the response headers every API response carries.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", apiCSP)
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "same-site")

		// Responses carry tenant data and must not be cached by proxies.
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
