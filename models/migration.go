package models

import (
	"log"

	"github.com/fgsantosti/estoque-agua/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Category{}, &Product{},
		&Supplier{}, &Customer{},
		&PaymentMode{},
		&StockMovement{},
		&Sale{}, &SaleItem{}, &SalePayment{},
		&Receivable{}, &ReceivablePayment{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
