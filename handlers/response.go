package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/gin-gonic/gin"
)

// statusForError maps model errors onto HTTP status codes. Anything not in
// the known taxonomy is treated as a rejected input.
func statusForError(err error) int {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateSaleNumber):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrOverpayment),
		errors.Is(err, models.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func respond(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondList(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid id " + value)
	}
	return n, nil
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func queryString(c *gin.Context, name string) *string {
	value := c.Query(name)
	if value == "" {
		return nil
	}
	return &value
}

func queryInt(c *gin.Context, name string) *int {
	value := c.Query(name)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

type activeToggle struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
