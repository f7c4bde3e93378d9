package handlers

import (
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/gin-gonic/gin"
)

func CreateCustomer(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, customer)
}

func UpdateCustomer(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, err)
		return
	}

	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, customer)
}

func DeleteCustomer(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	customer, err := models.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, customer)
}

func GetCustomer(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, customer)
}

// GetCustomerBalance reports what the customer still owes.
func GetCustomerBalance(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balance, err := models.CustomerOpenBalance(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, gin.H{"customer_id": id, "open_balance": balance})
}

func GetCustomers(c *gin.Context) {
	page, limit := pagination(c)
	activeOnly := c.Query("active") == "true"

	customers, total, err := models.GetCustomers(c.Request.Context(),
		queryString(c, "search"), activeOnly, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondList(c, customers, total, page, limit)
}

func ToggleActiveCustomer(c *gin.Context) {
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

	customer, err := models.ToggleActiveCustomer(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, customer)
}
