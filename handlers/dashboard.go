package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func GetDashboard(c *gin.Context) {
	dashboard, err := models.GetDashboard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, dashboard)
}
