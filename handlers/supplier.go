package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreateSupplier(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, supplier)
}

func UpdateSupplier(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, supplier)
}

func DeleteSupplier(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	supplier, err := models.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, supplier)
}

func GetSupplier(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, supplier)
}

func GetSuppliers(c *gin.Context) {
	page, limit := pagination(c)
	activeOnly := c.Query("active") == "true"

	suppliers, total, err := models.GetSuppliers(c.Request.Context(),
		queryString(c, "search"), activeOnly, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondList(c, suppliers, total, page, limit)
}

func ToggleActiveSupplier(c *gin.Context) {
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

	supplier, err := models.ToggleActiveSupplier(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, supplier)
}
