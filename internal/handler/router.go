package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker reports store health for GET /health.
type HealthChecker interface {
	Health() map[string]string
}

type RouterConfig struct {
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, orders *OrderHandler, health HealthChecker, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))
	if mw := corsMiddleware(cfg.AllowedOrigins); mw != nil {
		router.Use(mw)
	}

	rp := router.Group("/razorpay")
	{
		rp.POST("/pay/", orders.StartPayment)
		rp.POST("/pay", orders.StartPayment)
		rp.POST("/payment/success/", orders.PaymentSuccess)
		rp.POST("/payment/success", orders.PaymentSuccess)
	}

	router.GET("/health", func(c *gin.Context) {
		stats := health.Health()
		code := http.StatusOK
		if stats["status"] != "up" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"service": "razorpay-checkout", "store": stats})
	})

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
