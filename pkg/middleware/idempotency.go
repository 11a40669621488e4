package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// ContextKeyIdempotencyKey is the context key for idempotency key
	ContextKeyIdempotencyKey = "idempotency_key"
	// DefaultIdempotencyTTL is how long a completed response is replayed
	DefaultIdempotencyTTL = 24 * time.Hour
	// DefaultProcessingTTL bounds a crashed request's lock
	DefaultProcessingTTL = 60 * time.Second
	// IdempotencyKeyPrefix namespaces records in Redis
	IdempotencyKeyPrefix = "idempotency:"
)

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient interface for Redis operations
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL for in-flight records
	ProcessingTTL time.Duration
	// RequireKey rejects requests without X-Idempotency-Key; otherwise they pass through
	RequireKey bool
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(redis RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         redis,
		TTL:           DefaultIdempotencyTTL,
		ProcessingTTL: DefaultProcessingTTL,
	}
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Keys are scoped per user, and a key reused with a different body is rejected.
// Redis failures fail open.
func Idempotency(config *IdempotencyConfig) gin.HandlerFunc {
	if config.TTL == 0 {
		config.TTL = DefaultIdempotencyTTL
	}
	if config.ProcessingTTL == 0 {
		config.ProcessingTTL = DefaultProcessingTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.RequireKey {
				c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest("X-Idempotency-Key header is required"))
				return
			}
			c.Next()
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		userID, _ := GetUserID(c)
		requestHash := hashRequest(c.Request.Method, c.Request.URL.Path, body)
		redisKey := IdempotencyKeyPrefix + userID + ":" + key
		ctx := c.Request.Context()

		existing, err := getIdempotencyRecord(ctx, config.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, requestHash)
			return
		}

		record := &IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		data, _ := json.Marshal(record)
		acquired, err := config.Redis.SetNX(ctx, redisKey, string(data), config.ProcessingTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !acquired {
			if existing, _ = getIdempotencyRecord(ctx, config.Redis, redisKey); existing != nil {
				replay(c, existing, requestHash)
				return
			}
		}

		rw := &idempotencyResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		// Server errors are not replayed so the client can retry.
		if rw.Status() >= http.StatusInternalServerError {
			config.Redis.Del(ctx, redisKey)
			return
		}

		record.Status = StatusCompleted
		record.ResponseCode = rw.Status()
		record.ResponseBody = rw.body.String()
		if data, err := json.Marshal(record); err == nil {
			config.Redis.Set(ctx, redisKey, string(data), config.TTL)
		}
	}
}

// GetIdempotencyKey extracts idempotency key from gin context
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key, exists := c.Get(ContextKeyIdempotencyKey)
	if !exists {
		return "", false
	}
	k, ok := key.(string)
	return k, ok
}

func replay(c *gin.Context, record *IdempotencyRecord, requestHash string) {
	switch {
	case record.RequestHash != requestHash:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, response.Error("IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request"))
	case record.Status == StatusProcessing:
		c.AbortWithStatusJSON(http.StatusConflict, response.Error("REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed"))
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(record.ResponseCode, "application/json; charset=utf-8", []byte(record.ResponseBody))
		c.Abort()
	}
}

type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getIdempotencyRecord(ctx context.Context, client RedisClient, key string) (*IdempotencyRecord, error) {
	result, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}
