package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"careminder/internal/api"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	logger *zap.Logger,
	db *pgxpool.Pool,
	rdb *redis.Client,
	notifications *api.NotificationHandler,
	jwtSecret string,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	apiGroup.Use(AuthMiddleware(jwtSecret, logger))
	{
		apiGroup.GET("/notifications", notifications.List)
		apiGroup.POST("/notifications/:id/read", notifications.MarkRead)
		apiGroup.DELETE("/notifications/:id", notifications.Delete)
		apiGroup.DELETE("/notifications", notifications.Clear)
		apiGroup.POST("/notifications/seed", notifications.Seed)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
