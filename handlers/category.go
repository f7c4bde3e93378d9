package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreateCategory(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, category)
}

func UpdateCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	category, err := models.UpdateCategory(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, category)
}

func DeleteCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	category, err := models.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, category)
}

func GetCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	category, err := models.GetCategory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, category)
}

func GetCategories(c *gin.Context) {
	categories, err := models.GetCategories(c.Request.Context(), queryString(c, "search"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, categories)
}
