package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-svc/apiclient"
	"checkout-svc/chain"
	"checkout-svc/checkout"
	"checkout-svc/config"
	"checkout-svc/events"
	"checkout-svc/gateway"
	"checkout-svc/handlers"
	"checkout-svc/middleware"
	"checkout-svc/store"
	"checkout-svc/wallet"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing("checkout-svc")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing()

	// Initialize Redis session store
	rdb, err := store.InitRedis(cfg.RedisAddr(), cfg.RedisPassword, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer rdb.Close()
	sessionStore := store.NewRedisStore(rdb, cfg.SessionTTL, logger)

	// Initialize Kafka producer
	producer, err := events.InitProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()
	publisher := events.NewPublisher(producer, cfg.EventsTopic, logger)

	// External collaborators
	backend := apiclient.New(cfg.BackendBaseURL, logger)
	gw := gateway.New(cfg.GatewayBaseURL, logger)

	// Wallet session and on-chain payment orchestrator. When no provider is
	// configured the service runs with crypto payments disabled.
	var payer checkout.TokenPayer
	if session := connectWallet(cfg, logger); session != nil {
		reader := chain.NewRPCClient(cfg.ChainRPCURL, logger)
		payer = chain.NewOrchestrator(reader, session, cfg.PaymentContract, cfg.Recipient, logger)
	}

	svc := checkout.NewService(sessionStore, gw, payer, publisher, logger)

	// Start the bank-transfer confirmation consumer in background
	consumer := events.NewConfirmationConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, cfg.ConfirmationTopic, svc, logger)
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			logger.Error("Confirmation consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("checkout-svc"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", middleware.PrometheusHandler())

	// Hosted checkout endpoints
	checkoutHandler := handlers.NewCheckoutHandler(svc, cfg.JWTSecret, cfg.SessionTokenTTL, logger)
	router.POST("/checkout/sessions", checkoutHandler.CreateSession)
	router.GET("/checkout/sessions/:id", checkoutHandler.GetSession)
	router.POST("/checkout/sessions/:id/method", checkoutHandler.SelectMethod)
	router.POST("/checkout/sessions/:id/pay", checkoutHandler.Submit)

	// Dashboard read views
	dashboardHandler := handlers.NewDashboardHandler(backend, logger)
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/stats", dashboardHandler.GetStats)
		dashboard.POST("/payment-intents", dashboardHandler.CreatePaymentIntent)
		dashboard.GET("/transactions", dashboardHandler.GetTransactions)
		dashboard.GET("/transactions/stats", dashboardHandler.GetTransactionStats)
		dashboard.GET("/transactions/export", dashboardHandler.ExportTransactions)
		dashboard.GET("/customers", dashboardHandler.GetCustomers)
		dashboard.GET("/settings", dashboardHandler.GetSettings)
		dashboard.GET("/crypto/prices", dashboardHandler.GetCryptoPrices)
		dashboard.GET("/crypto/wallets", dashboardHandler.GetCryptoWallets)
		dashboard.GET("/crypto/transactions", dashboardHandler.GetCryptoTransactions)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Checkout Service started on :" + cfg.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func connectWallet(cfg config.Config, logger *zap.Logger) wallet.Session {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.WalletProvider {
	case "connector":
		session, err := wallet.ConnectConnector(ctx, cfg.WalletConnectorURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect wallet connector", zap.Error(err))
		}
		return session
	case "social":
		session, err := wallet.ConnectSocial(ctx, cfg.SocialWalletURL, cfg.SocialWalletToken, logger)
		if err != nil {
			logger.Fatal("Failed to connect social wallet", zap.Error(err))
		}
		return session
	default:
		logger.Warn("No wallet provider configured, crypto payments disabled")
		return nil
	}
}
