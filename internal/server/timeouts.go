// internal/server/timeouts.go
//
// HTTP server helper with fixed timeouts.
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap form bodies (10 s)
//   • WriteTimeout      – must outlast the webhook submit timeout
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// cmd/web passes the configured submit timeout so a slow webhook fails with
// a JSON error instead of a dropped connection.
//

package server

import (
	"net/http"
	"time"
)

// writeSlack is added on top of the submit timeout for rendering the reply.
const writeSlack = 5 * time.Second

// New constructs an *http.Server.  submitTimeout <= 0 means 15 s.
func New(addr string, handler http.Handler, submitTimeout time.Duration) *http.Server {
	if submitTimeout <= 0 {
		submitTimeout = 15 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      submitTimeout + writeSlack,
		IdleTimeout:       60 * time.Second,
	}
}
