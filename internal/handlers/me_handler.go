package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// GetMe echoes the identity the gateway resolved for the bearer token.
func (h *MeHandler) GetMe(c *gin.Context) {
	httpresp.OK(c, gin.H{
		"user": gin.H{
			"id":   middleware.UserID(c),
			"role": middleware.UserRole(c),
		},
	})
}
