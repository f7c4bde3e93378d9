package handlers

import (
	"net/http"
	"time"

	"github.com/fgsantosti/estoque-agua/models"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/gin-gonic/gin"
)

// Sale detail payloads carry the derived figures alongside the record, same
// as receivables do.
func respondSale(c *gin.Context, s *models.Sale) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"sale":           s,
		"item_count":     s.ItemCount(),
		"total_quantity": s.TotalQuantity(),
		"pending":        s.Pending(),
		"percent_paid":   s.PercentPaid(),
		"due_date":       s.DueDate(),
	}})
}

func CreateSale(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	sale, err := models.CreateSale(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}

func GetSale(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}

func GetSales(c *gin.Context) {
	page, limit := pagination(c)

	filter := models.SaleFilter{
		CustomerId: queryInt(c, "customer_id"),
		Number:     queryString(c, "number"),
	}
	if status := c.Query("status"); status != "" {
		s := models.SaleStatus(status)
		if s.IsValid() {
			filter.Status = &s
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &end
		}
	}

	sales, total, err := models.GetSales(c.Request.Context(), filter, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondList(c, sales, total, page, limit)
}

func UpdateSale(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.SaleHeaderEdit
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	sale, err := models.UpdateSale(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}

func CancelSale(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	sale, err := models.CancelSale(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}

// RegisterSalePayments takes a JSON array of (payment_mode_id, amount) pairs
// with an optional note each.
func RegisterSalePayments(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var inputs []models.NewSalePayment
	if err := c.ShouldBindJSON(&inputs); err != nil {
		abortWithError(c, err)
		return
	}

	sale, err := models.RegisterSalePayments(c.Request.Context(), id, inputs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}

// CheckoutSale is the POS split-payment form post. It takes repeated
// payment_method[] and amount[] fields, pairs them positionally, and feeds
// the batch through the same registration path as the JSON endpoint.
func CheckoutSale(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	methods := c.PostFormArray("payment_method[]")
	amounts := c.PostFormArray("amount[]")
	if len(methods) == 0 || len(methods) != len(amounts) {
		abortWithError(c, models.ErrInvalidAmount)
		return
	}

	inputs := make([]models.NewSalePayment, 0, len(methods))
	for i := range methods {
		modeId, err := parsePositiveInt(methods[i])
		if err != nil {
			abortWithError(c, err)
			return
		}
		amount, err := utils.ParseDecimal(amounts[i])
		if err != nil {
			abortWithError(c, err)
			return
		}
		inputs = append(inputs, models.NewSalePayment{PaymentModeId: modeId, Amount: amount})
	}

	sale, err := models.RegisterSalePayments(c.Request.Context(), id, inputs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondSale(c, sale)
}
