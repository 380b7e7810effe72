package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"checkout-svc/checkout"
	"checkout-svc/models"
	"checkout-svc/store"
	"checkout-svc/wallet"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CheckoutHandler exposes the hosted checkout surface. Access to a session
// requires the signed token minted when the session was created; it stands in
// for the unguessable hosted-checkout link.
type CheckoutHandler struct {
	svc       *checkout.Service
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewCheckoutHandler(svc *checkout.Service, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		svc:       svc,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var intent models.PaymentIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.svc.CreateSession(c.Request.Context(), intent)
	if err != nil {
		h.logger.Error("Failed to create checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sess.ID,
		"exp": time.Now().Add(h.tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		h.logger.Error("Failed to sign session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": sess,
		"token":   tokenString,
	})
}

func (h *CheckoutHandler) GetSession(c *gin.Context) {
	sess, ok := h.authorizedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *CheckoutHandler) SelectMethod(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var req struct {
		Method models.PaymentMethod `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.svc.SelectMethod(c.Request.Context(), c.Param("id"), req.Method)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *CheckoutHandler) Submit(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.svc.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// authorizedSession verifies the session token and loads the session it names.
func (h *CheckoutHandler) authorizedSession(c *gin.Context) (*models.CheckoutSession, bool) {
	id := c.Param("id")
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session token"})
		return nil, false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["sid"] != id {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token does not match session"})
		return nil, false
	}

	sess, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *CheckoutHandler) renderError(c *gin.Context, err error) {
	var validationErr *checkout.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, checkout.ErrPaymentInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrNoMethodSelected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrNotConnected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Checkout request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
