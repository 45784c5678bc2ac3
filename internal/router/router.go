package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-billing/internal/auth"
	"pos-billing/internal/billing"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/shop"
)

type Deps struct {
	Bills        *billing.Handler
	Shop         *shop.Handler
	Auth         *auth.Service
	AllowOrigins []string
	Log          *logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(d.Log))

	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "X-Request-ID")
	if len(d.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = d.AllowOrigins
	}
	r.Use(cors.New(cc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Accounts only exist when tokens are issued.
	api := r.Group("/")
	if d.Auth.Enabled() {
		ah := auth.NewHandler(d.Auth)
		r.POST("/login", ah.Login)
		r.POST("/signup", ah.Signup)
		api.Use(auth.Middleware(d.Auth.Secret()))
		api.POST("/account", ah.ChangeCredentials)
	}
	api.POST("/generate_bill", d.Bills.GenerateBill)
	api.GET("/view_bill/:bill_number", d.Bills.ViewBill)
	api.GET("/history", d.Bills.History)
	api.POST("/delete_bill/:bill_number", d.Bills.DeleteBill)
	api.POST("/clear_history", d.Bills.ClearHistory)

	api.GET("/menu", d.Shop.Menu)
	api.POST("/menu", d.Shop.AddItem)
	api.POST("/menu/prices", d.Shop.UpdatePrices)
	api.POST("/delete_item/:id", d.Shop.DeleteItem)
	api.GET("/settings", d.Shop.Settings)
	api.POST("/settings", d.Shop.SaveSettings)
	return r
}

// RequestID propagates X-Request-ID, minting one when the caller sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(billing.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithRequestID(c.GetString(billing.RequestIDKey)).Debug("http_request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
