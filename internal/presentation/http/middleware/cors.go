package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely-api/internal/config"
)

var (
	devOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}

	ledgerMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}

	// requestHeaders are always accepted whatever the configuration says
	requestHeaders = []string{"Authorization", "Content-Type", "X-Request-ID", IdempotencyKeyHeader}

	// responseHeaders are the ones a browser client needs to read
	responseHeaders = []string{
		"Content-Length",
		"X-Request-ID",
		IdempotencyReplayedHeader,
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"Retry-After",
	}
)

// CORSMiddleware builds the browser access policy from cfg
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsPolicy(cfg))
}

func corsPolicy(cfg *config.CORSConfig) cors.Config {
	policy := cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, devOrigins),
		AllowMethods:     orDefault(cfg.AllowedMethods, ledgerMethods),
		AllowHeaders:     mergeHeaders(cfg.AllowedHeaders, requestHeaders),
		ExposeHeaders:    responseHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// credentials cannot be combined with a wildcard origin
	for _, origin := range policy.AllowOrigins {
		if origin == "*" {
			policy.AllowOrigins = nil
			policy.AllowAllOrigins = true
			policy.AllowCredentials = false
			break
		}
	}
	return policy
}

func orDefault(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// mergeHeaders appends every required header missing from configured,
// comparing case-insensitively.
func mergeHeaders(configured, required []string) []string {
	out := orDefault(configured, nil)
	seen := make(map[string]bool, len(out)+len(required))
	for _, h := range out {
		seen[strings.ToLower(h)] = true
	}
	for _, h := range required {
		if !seen[strings.ToLower(h)] {
			out = append(out, h)
			seen[strings.ToLower(h)] = true
		}
	}
	return out
}
