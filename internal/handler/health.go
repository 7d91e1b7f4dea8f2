package handler

import (
	"context"
	"net/http"
	"time"

	"veredapos/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports the local state store and the optional Redis and cloud
// connections. Only the local store decides the status code: the POS keeps
// working without the others.
func Health(stateDB *sqlx.DB, rdb *redis.Client, cloud *gorm.DB, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		stateStatus := "connected"
		if stateDB == nil || stateDB.PingContext(ctx) != nil {
			stateStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		cloudStatus := "disabled"
		if cloud != nil {
			cloudStatus = "connected"
			sqlDB, err := cloud.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				cloudStatus = "error"
			}
		}

		body := gin.H{
			"ok":    stateStatus == "connected",
			"state": stateStatus,
			"redis": redisStatus,
			"cloud": cloudStatus,
		}
		if cb != nil {
			body["cloud_breaker"] = cb.State().String()
		}

		status := http.StatusOK
		if stateStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
