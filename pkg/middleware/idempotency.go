package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Amity808/entrytagv1/pkg/response"
)

const (
	// IdempotencyKeyHeader is the header carrying the client idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// DefaultIdempotencyTTL bounds how long a key replays a prior response
	DefaultIdempotencyTTL = 5 * time.Minute
	// idempotencyKeyPrefix namespaces idempotency records in Redis
	idempotencyKeyPrefix = "idempotency:"
)

// IdempotencyStatus represents the state of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the outcome of an idempotent request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays completed responses for repeated mutation requests
// carrying the same X-Idempotency-Key within the TTL window. Requests without
// the header pass through untouched.
func Idempotency(client redis.Cmdable, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + key
		reqHash := hashRequest(c)

		// First writer wins the processing slot
		record := IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: reqHash,
			CreatedAt:   time.Now().UTC(),
		}
		payload, _ := json.Marshal(record)
		acquired, err := client.SetNX(ctx, redisKey, payload, ttl).Result()
		if err != nil {
			// Redis being down must not block purchases; fall through
			c.Next()
			return
		}

		if !acquired {
			raw, err := client.Get(ctx, redisKey).Result()
			if err != nil {
				c.Next()
				return
			}
			var existing IdempotencyRecord
			if err := json.Unmarshal([]byte(raw), &existing); err != nil {
				c.Next()
				return
			}
			if existing.RequestHash != reqHash {
				response.Conflict(c, "IDEMPOTENCY_MISMATCH", "idempotency key reused with a different request")
				c.Abort()
				return
			}
			if existing.Status == StatusProcessing {
				response.Conflict(c, "REQUEST_IN_PROGRESS", "a request with this idempotency key is still processing")
				c.Abort()
				return
			}
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		record.Status = StatusCompleted
		record.ResponseCode = recorder.Status()
		record.ResponseBody = recorder.body.String()
		payload, _ = json.Marshal(record)
		_ = client.Set(ctx, redisKey, payload, ttl).Err()
	}
}

func hashRequest(c *gin.Context) string {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	sum := sha256.Sum256(append([]byte(c.Request.Method+c.Request.URL.Path), body...))
	return hex.EncodeToString(sum[:])
}
