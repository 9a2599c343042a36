package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetActiveTariff(c *gin.Context) {
	tariff, err := s.tariffs.Active(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tariff == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tariff})
}
