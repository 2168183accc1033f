package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuemby/herald/pkg/identity"
	"github.com/cuemby/herald/pkg/metrics"
	"github.com/cuemby/herald/pkg/types"
)

const (
	headerRecipientID   = "X-Recipient-ID"
	headerRecipientRole = "X-Recipient-Role"

	contextKeyRecipient = "recipient"
)

// recipientAuth resolves the calling recipient. With an auth secret
// configured, a valid bearer token is required and its claims are
// authoritative. Without one (development mode), the recipient headers
// are trusted as-is.
func (s *Server) recipientAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.secret != "" {
			header := c.GetHeader("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
				return
			}
			recipient, err := identity.ParseToken(s.secret, tokenString)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set(contextKeyRecipient, recipient)
			c.Next()
			return
		}

		recipientID := c.GetHeader(headerRecipientID)
		if recipientID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "recipient identity required"})
			return
		}
		role := c.GetHeader(headerRecipientRole)
		if role == "" {
			role = types.DefaultRole
		}
		c.Set(contextKeyRecipient, types.Recipient{ID: recipientID, Role: role})
		c.Next()
	}
}

// currentRecipient returns the identity resolved by recipientAuth
func currentRecipient(c *gin.Context) types.Recipient {
	if value, ok := c.Get(contextKeyRecipient); ok {
		if recipient, ok := value.(types.Recipient); ok {
			return recipient
		}
	}
	return types.Recipient{}
}

// requestMetrics records request counts and latency per method
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := metrics.NewTimer()
		c.Next()
		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, c.Request.Method)
	}
}
