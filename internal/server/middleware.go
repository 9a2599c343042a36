package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/crudpark/internal/observability/context"
)

const (
	HeaderOperator       = "X-Operator-ID"
	contextOperatorIDKey = "operator_id"
)

// OperatorRequired resolves the active operator named by the X-Operator-ID
// header and attributes the request to them.
func (s *Server) OperatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOperator))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		op, err := s.operatorSvc.GetActive(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOperatorIDKey, op.ID)
		c.Request = c.Request.WithContext(obscontext.WithOperatorID(c.Request.Context(), op.ID))
		c.Next()
	}
}

func operatorID(c *gin.Context) int64 {
	return c.GetInt64(contextOperatorIDKey)
}
