package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	redispkg "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 60 * time.Second
	maxHashedBody     = 64 << 10

	idempotencePending = "0"
	idempotenceDone    = "1"
)

// Idempotence rejects an identical POST or PUT repeated within 60 seconds with 409.
// Identity is the x-idempotence header, or a hash of method, URL, body, user agent and IP.
func Idempotence(rdb *redispkg.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rdb.Enabled() || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := redispkg.Key("idempotence", key)
		ctx := c.Request.Context()

		stored, err := rdb.SetNX(ctx, redisKey, idempotencePending, idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !stored {
			msg := "The same request can only be sent once within 60 seconds"
			if val, _ := rdb.Get(ctx, redisKey); val == idempotencePending {
				msg = "The same request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}

		c.Next()

		bg := context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = rdb.Set(bg, redisKey, idempotenceDone, idempotenceTTL)
		} else {
			_ = rdb.Del(bg, redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxHashedBody))
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" +
		c.Request.UserAgent() + "|" + c.ClientIP()
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
