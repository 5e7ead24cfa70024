package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/config"
)

// headers the register UI has to send
var requiredAllowHeaders = []string{"Content-Type", RequestIDHeader, IdempotencyKeyHeader}

// headers set by this service that browsers may read
var exposedHeaders = []string{
	"Content-Disposition",
	RequestIDHeader,
	IdempotencyReplayedHeader,
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSMiddleware builds the CORS handler. Without configured origins every
// origin is allowed; no credentials are involved since the API has no login.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  mergeHeaders(cfg.AllowedHeaders, requiredAllowHeaders),
		ExposeHeaders: exposedHeaders,
		MaxAge:        cfg.MaxAge,
	}

	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}

	return cors.New(corsConfig)
}

func mergeHeaders(configured, required []string) []string {
	out := append([]string{}, configured...)
	for _, h := range required {
		found := false
		for _, c := range configured {
			if http.CanonicalHeaderKey(c) == http.CanonicalHeaderKey(h) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, h)
		}
	}
	return out
}
