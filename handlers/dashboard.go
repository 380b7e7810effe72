package handlers

import (
	"context"
	"net/http"
	"net/url"

	"checkout-svc/middleware"
	"checkout-svc/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Backend is the slice of the backend API the dashboard views read from.
type Backend interface {
	MerchantStats(ctx context.Context, token string) (*models.MerchantStats, error)
	CreatePaymentIntent(ctx context.Context, token string, intent models.PaymentIntent) (*models.CreatedPaymentIntent, error)
	Transactions(ctx context.Context, token string, query url.Values) ([]models.Transaction, error)
	TransactionStats(ctx context.Context, token string) (*models.TransactionStats, error)
	ExportTransactions(ctx context.Context, token string) ([]byte, error)
	Customers(ctx context.Context, token string) ([]models.Customer, error)
	Settings(ctx context.Context, token string) (*models.MerchantSettings, error)
	CryptoPrices(ctx context.Context, token string) ([]models.CryptoPrice, error)
	CryptoWallets(ctx context.Context, token string) ([]models.CryptoWallet, error)
	CryptoTransactions(ctx context.Context, token string) ([]models.CryptoTransaction, error)
}

// DashboardHandler renders the read-only merchant views. The caller's bearer
// token passes straight through to the backend, which owns authorization.
type DashboardHandler struct {
	backend Backend
	logger  *zap.Logger
}

func NewDashboardHandler(backend Backend, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{backend: backend, logger: logger}
}

// GetStats falls back to a zeroed display when the backend is unavailable.
// Analytics are informational; the page still renders.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.backend.MerchantStats(c.Request.Context(), bearerToken(c))
	if err != nil {
		traceID := middleware.GetTraceID(c.Request.Context())
		h.logger.Error("Failed to fetch merchant stats", zap.String("trace_id", traceID), zap.Error(err))
		c.JSON(http.StatusOK, models.MerchantStats{})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreatePaymentIntent registers an intent with the backend on behalf of the
// merchant. The backend validates and owns the record; this just relays it.
func (h *DashboardHandler) CreatePaymentIntent(c *gin.Context) {
	var intent models.PaymentIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.backend.CreatePaymentIntent(c.Request.Context(), bearerToken(c), intent)
	if err != nil {
		h.renderBackendError(c, "Failed to create payment intent", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *DashboardHandler) GetTransactions(c *gin.Context) {
	txns, err := h.backend.Transactions(c.Request.Context(), bearerToken(c), c.Request.URL.Query())
	if err != nil {
		h.renderBackendError(c, "Failed to fetch transactions", err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *DashboardHandler) GetTransactionStats(c *gin.Context) {
	stats, err := h.backend.TransactionStats(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch transaction stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) ExportTransactions(c *gin.Context) {
	data, err := h.backend.ExportTransactions(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to export transactions", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *DashboardHandler) GetCustomers(c *gin.Context) {
	customers, err := h.backend.Customers(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch customers", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *DashboardHandler) GetSettings(c *gin.Context) {
	settings, err := h.backend.Settings(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *DashboardHandler) GetCryptoPrices(c *gin.Context) {
	prices, err := h.backend.CryptoPrices(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch crypto prices", err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func (h *DashboardHandler) GetCryptoWallets(c *gin.Context) {
	wallets, err := h.backend.CryptoWallets(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch crypto wallets", err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}

func (h *DashboardHandler) GetCryptoTransactions(c *gin.Context) {
	txns, err := h.backend.CryptoTransactions(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.renderBackendError(c, "Failed to fetch crypto transactions", err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *DashboardHandler) renderBackendError(c *gin.Context, msg string, err error) {
	traceID := middleware.GetTraceID(c.Request.Context())
	h.logger.Error(msg, zap.String("trace_id", traceID), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}
