package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/erp/pos/internal/infrastructure/backend"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Header names read by CashierIdentity
const (
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	TerminalIDHeader = "X-Terminal-ID"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// CashierClaims are the claims read from the bearer token issued by the
// remote API (HMAC signed with the shared secret).
type CashierClaims struct {
	UserID   any    `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// CashierKey returns the first non-empty identity claim
func (c *CashierClaims) CashierKey() string {
	switch v := c.UserID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if c.Subject != "" {
		return c.Subject
	}
	return c.Username
}

// CashierAuthConfig holds configuration for CashierIdentity
type CashierAuthConfig struct {
	// Secret verifies the HMAC signature of bearer tokens
	Secret string
	// Issuer, when set, must match the iss claim
	Issuer string
	// AllowTerminalHeader keys unauthenticated requests by X-Terminal-ID.
	// Development only; config validation rejects it in production.
	AllowTerminalHeader bool
	Logger              *zap.Logger
}

// CashierIdentity verifies the bearer token and keys the request to its
// cashier. The token is also forwarded to the remote API.
func CashierIdentity(cfg CashierAuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	secret := []byte(cfg.Secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return secret, nil
	}

	return func(c *gin.Context) {
		var cashierID, token string

		if header := c.GetHeader(AuthHeaderKey); header != "" {
			if !strings.HasPrefix(header, BearerPrefix) {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
			token = strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
			if len(secret) == 0 {
				abortUnauthorized(c, "Token validation failed")
				return
			}
			claims := &CashierClaims{}
			if _, err := parser.ParseWithClaims(token, claims, keyFunc); err != nil {
				log.Debug("bearer token rejected", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					abortUnauthorized(c, "Token has expired")
					return
				}
				abortUnauthorized(c, "Token validation failed")
				return
			}
			cashierID = claims.CashierKey()
			if cashierID == "" {
				abortUnauthorized(c, "Token carries no cashier identity")
				return
			}
		} else if cfg.AllowTerminalHeader {
			cashierID = strings.TrimSpace(c.GetHeader(TerminalIDHeader))
		}
		if cashierID == "" {
			abortUnauthorized(c, "Missing cashier credentials")
			return
		}

		c.Set(logger.GinCashierIDKey, cashierID)
		ctx := backend.WithBearerToken(c.Request.Context(), token)
		ctx = logger.WithCashierID(ctx, cashierID)
		c.Request = c.Request.WithContext(ctx)

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.String("pos.cashier_id", cashierID),
				attribute.String("request_id", GetRequestID(c)),
			)
		}
		c.Next()
	}
}

// GetCashierID returns the cashier keyed by CashierIdentity
func GetCashierID(c *gin.Context) string {
	return c.GetString(logger.GinCashierIDKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized, message, GetRequestID(c),
	))
}
