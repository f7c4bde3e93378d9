package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreateProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, product)
}

func UpdateProduct(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, product)
}

func DeleteProduct(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	product, err := models.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, product)
}

func GetProduct(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, product)
}

func GetProducts(c *gin.Context) {
	page, limit := pagination(c)
	activeOnly := c.Query("active") == "true"

	products, total, err := models.GetProducts(c.Request.Context(),
		queryString(c, "search"), queryInt(c, "category_id"), activeOnly, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondList(c, products, total, page, limit)
}

func ToggleActiveProduct(c *gin.Context) {
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

	product, err := models.ToggleActiveProduct(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, product)
}

// GetProductPriceStock backs the POS form: it resolves a product's current
// price and availability without loading the whole product page.
func GetProductPriceStock(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := models.GetProductPriceStock(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, result)
}
