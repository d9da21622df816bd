package middleware

import (
	"bytes"
	"net/http"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache 缓存整页 JSON 响应，只缓存 200；需挂在 OptionalAuth 之后
func PageCache(store cache.PageCache, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.Key{
			Scope:  scope,
			Page:   pkg.NormalizePage(c.Query("page")),
			Viewer: cache.ViewerBucket(UserID(c)),
		}
		ctx := c.Request.Context()

		res, err := store.Get(ctx, key)
		if err != nil {
			// 缓存不可用时直接走 handler，也不回写
			pkg.Logger.Warn("page cache get failed", zap.String("key", key.String()), zap.Error(err))
			c.Next()
			return
		}
		if res.Hit {
			PageCacheRequests.WithLabelValues(scope, "hit").Inc()
			c.Data(http.StatusOK, "application/json; charset=utf-8", res.Value)
			c.Abort()
			return
		}
		PageCacheRequests.WithLabelValues(scope, "miss").Inc()

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		if err = store.Set(ctx, key, res.Gen, w.body.Bytes()); err != nil {
			pkg.Logger.Warn("page cache set failed", zap.String("key", key.String()), zap.Error(err))
		}
	}
}
