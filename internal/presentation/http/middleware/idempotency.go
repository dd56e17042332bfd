package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the key store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// DefaultIdempotencyKeyTTL is how long keys are valid when no TTL is configured
	DefaultIdempotencyKeyTTL = 24 * time.Hour
	maxIdempotencyKeyLength  = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Now  func() time.Time
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

// Idempotency replays the stored response when an authenticated request is
// repeated with the same Idempotency-Key. Requests without the header run
// normally. Only successful responses are stored, so a rejected payment can
// be retried with the same key.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = DefaultIdempotencyKeyTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKeyLength {
			response.Error(c, apperror.NewFieldValidationError(IdempotencyKeyHeader, "must have at most 255 characters"))
			c.Abort()
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := c.Request.Method + " " + c.Request.URL.Path

		existing, err := config.Repo.GetByKey(ctx, idempotencyKey, userID)
		if err != nil {
			response.Error(c, apperror.NewPersistenceError(err))
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired(config.Now()) {
			if existing.Endpoint != endpoint {
				response.Error(c, apperror.NewConflictError("Idempotency-Key was already used for a different request"))
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          idempotencyKey,
			UserID:       userID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    config.Now().Add(config.TTL),
		}
		if err := config.Repo.Save(ctx, ikey); err != nil {
			logger.FromContext(ctx).Warn("failed to store idempotency key",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}
}
