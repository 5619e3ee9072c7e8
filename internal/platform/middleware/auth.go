package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header names of the api-key authentication scheme. Every pet route
// requires both: the shared api key authenticates the caller system, the
// client id identifies the tenant whose pets are being accessed.
const (
	APIKeyHeader   = "X-Api-Key"
	ClientIDHeader = "X-Client-Id"
)

const clientIDContextKey = "client_id"

// APIKeyAuth rejects requests without a valid api key or a well-formed
// client id, and stores the parsed client id on the context.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		clientID, err := uuid.Parse(c.GetHeader(ClientIDHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid client id"})
			return
		}

		c.Set(clientIDContextKey, clientID)
		c.Next()
	}
}

// GetClientID returns the authenticated client id from the context.
func GetClientID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(clientIDContextKey)
	if !ok {
		return uuid.Nil, false
	}
	clientID, ok := v.(uuid.UUID)
	return clientID, ok
}
