package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ctoutbank/portal-outbank-sub005/internal/apierror"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
)

const (
	APIKeyIsoKey  = "api_key_iso_id"
	APIKeyHashKey = "api_key_hash"
)

// APIKeyAuth authenticates the public partner API by the x-api-key header.
// Keys map 1:1 to a tenant; only the SHA-256 hash is ever compared or stored.
func APIKeyAuth(keys repository.APIKeyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("x-api-key")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("x-api-key header is required"))
			return
		}

		sum := sha256.Sum256([]byte(raw))
		keyHash := hex.EncodeToString(sum[:])

		key, err := keys.FindActiveByHash(c.Request.Context(), keyHash)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid api key"))
			return
		}

		c.Set(APIKeyIsoKey, key.IsoID)
		c.Set(APIKeyHashKey, keyHash)
		c.Next()
	}
}

// GetAPIKeyIso returns the tenant the presented API key belongs to, or
// uuid.Nil when no key context is set.
func GetAPIKeyIso(c *gin.Context) uuid.UUID {
	v, ok := c.Get(APIKeyIsoKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// GetAPIKeyHash returns the hash of the presented key (for last-used stamps).
func GetAPIKeyHash(c *gin.Context) string {
	v, ok := c.Get(APIKeyHashKey)
	if !ok {
		return ""
	}
	hash, _ := v.(string)
	return hash
}
