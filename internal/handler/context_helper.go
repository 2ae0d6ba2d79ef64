package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/models"
	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
	"github.com/MrJittiPat/Timetable2/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// requireClaims writes 401 and returns nil when the route ran without JWT.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}
