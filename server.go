package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/handlers"
	"github.com/fgsantosti/estoque-agua/middlewares"
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger logs only requests that collected errors, tagged with the
// correlation id and operator when the request carries them.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			fields := logrus.Fields{}
			if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
				fields["correlation_id"] = cid
			}
			if name, ok := utils.GetUserNameFromContext(c.Request.Context()); ok {
				fields["operator"] = name
			}
			logger.WithFields(fields).Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/login", handlers.Login)
	api.GET("/auth/me", handlers.Me)

	api.GET("/categories", handlers.GetCategories)
	api.POST("/categories", handlers.CreateCategory)
	api.GET("/categories/:id", handlers.GetCategory)
	api.PUT("/categories/:id", handlers.UpdateCategory)
	api.DELETE("/categories/:id", handlers.DeleteCategory)

	api.GET("/products", handlers.GetProducts)
	api.POST("/products", handlers.CreateProduct)
	api.GET("/products/:id", handlers.GetProduct)
	api.PUT("/products/:id", handlers.UpdateProduct)
	api.DELETE("/products/:id", handlers.DeleteProduct)
	api.PATCH("/products/:id/active", handlers.ToggleActiveProduct)
	api.GET("/products/:id/price-stock", handlers.GetProductPriceStock)

	api.GET("/suppliers", handlers.GetSuppliers)
	api.POST("/suppliers", handlers.CreateSupplier)
	api.GET("/suppliers/:id", handlers.GetSupplier)
	api.PUT("/suppliers/:id", handlers.UpdateSupplier)
	api.DELETE("/suppliers/:id", handlers.DeleteSupplier)
	api.PATCH("/suppliers/:id/active", handlers.ToggleActiveSupplier)

	api.GET("/customers", handlers.GetCustomers)
	api.POST("/customers", handlers.CreateCustomer)
	api.GET("/customers/:id", handlers.GetCustomer)
	api.PUT("/customers/:id", handlers.UpdateCustomer)
	api.DELETE("/customers/:id", handlers.DeleteCustomer)
	api.PATCH("/customers/:id/active", handlers.ToggleActiveCustomer)
	api.GET("/customers/:id/balance", handlers.GetCustomerBalance)

	api.GET("/payment-modes", handlers.GetPaymentModes)
	api.POST("/payment-modes", handlers.CreatePaymentMode)
	api.GET("/payment-modes/:id", handlers.GetPaymentMode)
	api.PUT("/payment-modes/:id", handlers.UpdatePaymentMode)
	api.DELETE("/payment-modes/:id", handlers.DeletePaymentMode)
	api.PATCH("/payment-modes/:id/active", handlers.ToggleActivePaymentMode)

	api.GET("/stock-movements", handlers.GetMovements)
	api.POST("/stock-movements", handlers.RecordMovement)
	api.GET("/stock-movements/:id", handlers.GetMovement)
	api.DELETE("/stock-movements/:id", handlers.DeleteMovement)

	api.GET("/sales", handlers.GetSales)
	api.POST("/sales", handlers.CreateSale)
	api.GET("/sales/:id", handlers.GetSale)
	api.PUT("/sales/:id", handlers.UpdateSale)
	api.POST("/sales/:id/cancel", handlers.CancelSale)
	api.POST("/sales/:id/payments", handlers.RegisterSalePayments)
	api.POST("/sales/:id/checkout", handlers.CheckoutSale)

	api.GET("/receivables", handlers.GetReceivables)
	api.POST("/receivables", handlers.CreateReceivable)
	api.GET("/receivables/:id", handlers.GetReceivable)
	api.POST("/receivables/:id/payments", handlers.PayReceivable)

	api.GET("/dashboard", handlers.GetDashboard)
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before dependencies are ready; app endpoints
	// return 503 until the database connection is up.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist; anything else allows all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.SessionMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate DDL can block tables; allow running it as a separate job.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api/v1")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
