package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreatePaymentMode(c *gin.Context) {
	var input models.NewPaymentMode
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	mode, err := models.CreatePaymentMode(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, mode)
}

func UpdatePaymentMode(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewPaymentMode
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	mode, err := models.UpdatePaymentMode(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, mode)
}

func DeletePaymentMode(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	mode, err := models.DeletePaymentMode(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, mode)
}

func GetPaymentMode(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	mode, err := models.GetPaymentMode(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, mode)
}

func GetPaymentModes(c *gin.Context) {
	// The POS form wants the short cached active list; the admin page wants
	// everything with search and paging.
	if c.Query("active") == "true" {
		modes, err := models.GetActivePaymentModes(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		respond(c, modes)
		return
	}

	page, limit := pagination(c)
	modes, total, err := models.GetPaymentModes(c.Request.Context(),
		queryString(c, "search"), page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondList(c, modes, total, page, limit)
}

func ToggleActivePaymentMode(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input activeToggle
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	mode, err := models.ToggleActivePaymentMode(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, mode)
}
