package handlers

import (
	"net/http"
	"time"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreateReceivable(c *gin.Context) {
	var input models.NewReceivable
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	receivable, err := models.CreateReceivable(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, receivable)
}

func GetReceivable(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	receivable, err := models.GetReceivable(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondReceivable(c, receivable)
}

func GetReceivables(c *gin.Context) {
	page, limit := pagination(c)

	filter := models.ReceivableFilter{
		CustomerId:  queryInt(c, "customer_id"),
		OverdueOnly: c.Query("overdue") == "true",
	}
	if status := c.Query("status"); status != "" {
		s := models.ReceivableStatus(status)
		if s.IsValid() {
			filter.Status = &s
		}
	}

	receivables, total, err := models.GetReceivables(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(receivables))
	for _, r := range receivables {
		items = append(items, receivableView(r, now))
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func PayReceivable(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewReceivablePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	receivable, err := models.PayReceivable(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondReceivable(c, receivable)
}

// Overdue and the payment progress are derived, not stored, so list and
// detail payloads attach them on the way out.
func receivableView(r *models.Receivable, now time.Time) gin.H {
	return gin.H{
		"receivable":   r,
		"pending":      r.Pending(),
		"percent_paid": r.PercentPaid(),
		"overdue":      r.Overdue(now),
	}
}

func respondReceivable(c *gin.Context, r *models.Receivable) {
	c.JSON(http.StatusOK, gin.H{"data": receivableView(r, time.Now())})
}
