package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medrent/backend/internal/interfaces/http/dto"
)

// Context keys set by the request middleware
const (
	RequestIDKey = "X-Request-ID"
	CompanyIDKey = "company_id"
	ActorIDKey   = "actor_id"
)

// DefaultCompanyID is the development fallback when no company header is
// sent. Production deployments put an auth proxy in front that always
// sets the header.
var DefaultCompanyID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// RequestID assigns every request a correlation ID, honouring one sent
// by the caller
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Next()
	}
}

// CompanyContext resolves the company scope of the request from the
// X-Company-ID header. Requests with a malformed header are rejected.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := DefaultCompanyID
		if header := c.GetHeader("X-Company-ID"); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponse(dto.ErrCodeBadRequest, "invalid X-Company-ID header"))
				return
			}
			companyID = parsed
		}
		c.Set(CompanyIDKey, companyID)

		if header := c.GetHeader("X-User-ID"); header != "" {
			if actorID, err := uuid.Parse(header); err == nil {
				c.Set(ActorIDKey, actorID)
			}
		}
		c.Next()
	}
}

// GetCompanyID returns the company scope of the request
func GetCompanyID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(CompanyIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return DefaultCompanyID
}

// GetActorID returns the acting user, or uuid.Nil when unauthenticated
func GetActorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ActorIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetRequestID returns the correlation ID of the request
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}
