package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"github.com/sangkips/kassensystem/internal/domain/repository"
	"github.com/sangkips/kassensystem/internal/presentation/http/dto/response"
	"github.com/sangkips/kassensystem/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyTTL is how long keys are valid when no TTL is configured
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo     repository.IdempotencyRepository
	TTL      time.Duration
	Required bool
	Logger   *zap.Logger
	Now      func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request whose Idempotency-Key
// was already processed on the same endpoint. Only 2xx responses are stored,
// so a failed attempt can be retried with the same key.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required {
				response.ErrorWithCode(c, http.StatusBadRequest, apperror.CodeIdempotencyKey, "Header Idempotency-Key ist erforderlich")
				return
			}
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Anfrage konnte nicht gelesen werden")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		endpoint := c.Request.Method + " " + c.FullPath()
		hash := requestHash(endpoint, body)
		ctx := c.Request.Context()
		now := cfg.Now()

		existing, err := cfg.Repo.GetByKey(ctx, key, endpoint)
		if err != nil {
			cfg.Logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if existing != nil {
			if !existing.IsExpired(now) {
				if existing.RequestHash != hash {
					response.ErrorWithCode(c, http.StatusUnprocessableEntity, apperror.CodeIdempotencyReuse,
						"Idempotency-Key wurde bereits für eine andere Anfrage verwendet")
					return
				}
				c.Header(IdempotencyReplayedHeader, "true")
				c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
				c.Abort()
				return
			}
			// the unique (key, endpoint) index would reject the new record
			if _, err := cfg.Repo.DeleteExpired(ctx, now); err != nil {
				cfg.Logger.Warn("idempotency purge failed", zap.Error(err))
			}
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		record := &entity.IdempotencyKey{
			Key:          key,
			Endpoint:     endpoint,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    now.Add(cfg.TTL),
		}
		if err := cfg.Repo.Create(ctx, record); err != nil {
			cfg.Logger.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func requestHash(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
