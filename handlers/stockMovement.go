package handlers

import (
	"net/http"
	"time"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func RecordMovement(c *gin.Context) {
	var input models.NewStockMovement
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	movement, err := models.RecordMovement(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, movement)
}

func DeleteMovement(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	movement, err := models.DeleteMovement(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, movement)
}

func movementFilterFromQuery(c *gin.Context) models.MovementFilter {
	filter := models.MovementFilter{ProductId: queryInt(c, "product_id")}

	if kind := c.Query("kind"); kind != "" {
		k := models.MovementKind(kind)
		if k.IsValid() {
			filter.Kind = &k
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive end of day.
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &end
		}
	}
	return filter
}

// GetMovements lists the ledger with its per-kind totals so the listing page
// renders both in one round trip.
func GetMovements(c *gin.Context) {
	page, limit := pagination(c)
	filter := movementFilterFromQuery(c)

	movements, total, err := models.GetMovements(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	totals, err := models.GetMovementTotals(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   movements,
		"totals": totals,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func GetMovement(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	movement, err := models.GetMovement(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, movement)
}
