package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fgsantosti/estoque-agua/config"
	"github.com/fgsantosti/estoque-agua/models"
	"github.com/fgsantosti/estoque-agua/utils"
	"github.com/shopspring/decimal"
)

// End-to-end exercise of the stock ledger, sale creation, split payment and
// cancellation flows against a real MySQL.
func TestSaleAndLedgerFlow(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "estoque_test")
	// The app must run without redis.
	t.Setenv("REDIS_ADDRESS", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	operator, err := models.CreateUser(ctx, &models.NewUser{
		Username: "tester",
		Name:     "Tester",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	ctx = utils.SetUserIdInContext(ctx, operator.ID)
	ctx = utils.SetUserNameInContext(ctx, operator.Name)

	category, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Bottled Water"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	bottle, err := models.CreateProduct(ctx, &models.NewProduct{
		CategoryId: category.ID,
		Name:       "Mineral Water 20L",
		Code:       "AGUA-20L",
		SalePrice:  decimal.NewFromFloat(2.50),
		CostPrice:  decimal.NewFromFloat(1.10),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	cup, err := models.CreateProduct(ctx, &models.NewProduct{
		CategoryId: category.ID,
		Name:       "Plastic Cup Pack",
		Code:       "COPO-200",
		SalePrice:  decimal.NewFromFloat(4.00),
		CostPrice:  decimal.NewFromFloat(2.00),
	})
	if err != nil {
		t.Fatalf("CreateProduct cup: %v", err)
	}

	// Ledger: entry, bounded exit, adjustment-as-set.
	if _, err := models.RecordMovement(ctx, &models.NewStockMovement{
		ProductId: bottle.ID,
		Kind:      models.MovementKindEntry,
		Quantity:  50,
	}); err != nil {
		t.Fatalf("entry movement: %v", err)
	}

	if _, err := models.RecordMovement(ctx, &models.NewStockMovement{
		ProductId: bottle.ID,
		Kind:      models.MovementKindExit,
		Quantity:  45,
	}); err != nil {
		t.Fatalf("exit movement: %v", err)
	}
	bottle = mustGetProduct(t, ctx, bottle.ID)
	if bottle.StockQty != 5 {
		t.Fatalf("after 50 in / 45 out stock = %d, want 5", bottle.StockQty)
	}
	if !bottle.LowStock() {
		t.Fatal("5 of minimum 10 should report low stock")
	}

	_, err = models.RecordMovement(ctx, &models.NewStockMovement{
		ProductId: bottle.ID,
		Kind:      models.MovementKindExit,
		Quantity:  10,
	})
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("oversized exit error = %v, want ErrInsufficientStock", err)
	}
	if got := mustGetProduct(t, ctx, bottle.ID).StockQty; got != 5 {
		t.Fatalf("failed exit mutated stock to %d", got)
	}

	if _, err := models.RecordMovement(ctx, &models.NewStockMovement{
		ProductId: bottle.ID,
		Kind:      models.MovementKindAdjustment,
		Quantity:  40,
	}); err != nil {
		t.Fatalf("adjustment movement: %v", err)
	}
	if got := mustGetProduct(t, ctx, bottle.ID).StockQty; got != 40 {
		t.Fatalf("adjustment set stock to %d, want exactly 40", got)
	}

	if _, err := models.RecordMovement(ctx, &models.NewStockMovement{
		ProductId: cup.ID,
		Kind:      models.MovementKindEntry,
		Quantity:  20,
	}); err != nil {
		t.Fatalf("cup entry: %v", err)
	}

	// Sale to a customer on a 30-day term.
	term30, err := models.CreatePaymentMode(ctx, &models.NewPaymentMode{
		Name:            "Boleto 30d",
		ReceiptTermDays: 30,
	})
	if err != nil {
		t.Fatalf("CreatePaymentMode: %v", err)
	}
	cash, err := models.CreatePaymentMode(ctx, &models.NewPaymentMode{Name: "Cash"})
	if err != nil {
		t.Fatalf("CreatePaymentMode cash: %v", err)
	}

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Padaria Central"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	sale, err := models.CreateSale(ctx, &models.NewSale{
		CustomerId:    &customer.ID,
		PaymentModeId: &term30.ID,
		Items: []models.NewSaleItem{
			{ProductId: bottle.ID, Quantity: 2},
			{ProductId: cup.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if sale.Number != "VD000001" {
		t.Fatalf("first sale number = %q, want VD000001", sale.Number)
	}
	if want := decimal.NewFromFloat(9.00); !sale.Total.Equal(want) {
		t.Fatalf("sale total = %s, want %s", sale.Total, want)
	}
	if sale.Status != models.SaleStatusOpen {
		t.Fatalf("customer sale status = %s, want Open", sale.Status)
	}
	if got := mustGetProduct(t, ctx, bottle.ID).StockQty; got != 38 {
		t.Fatalf("bottle stock after sale = %d, want 38", got)
	}

	receivables, _, err := models.GetReceivables(ctx, models.ReceivableFilter{CustomerId: &customer.ID}, 1, 20)
	if err != nil {
		t.Fatalf("GetReceivables: %v", err)
	}
	if len(receivables) != 1 {
		t.Fatalf("customer receivables = %d, want 1", len(receivables))
	}
	linked := receivables[0]
	if !linked.Amount.Equal(sale.Total) || !linked.PaidAmount.IsZero() {
		t.Fatalf("receivable amount/paid = %s/%s, want %s/0", linked.Amount, linked.PaidAmount, sale.Total)
	}
	wantDue := sale.CreatedAt.AddDate(0, 0, 30)
	if gap := linked.DueDate.Sub(wantDue); gap > time.Minute || gap < -time.Minute {
		t.Fatalf("receivable due %s, want ~%s", linked.DueDate, wantDue)
	}

	// Over-split rejected whole, exact split accepted.
	_, err = models.RegisterSalePayments(ctx, sale.ID, []models.NewSalePayment{
		{PaymentModeId: cash.ID, Amount: decimal.NewFromFloat(5.00)},
		{PaymentModeId: cash.ID, Amount: decimal.NewFromFloat(5.00)},
	})
	if !errors.Is(err, models.ErrOverpayment) {
		t.Fatalf("over-split error = %v, want ErrOverpayment", err)
	}
	if got := mustGetSale(t, ctx, sale.ID); len(got.Payments) != 0 {
		t.Fatalf("rejected split left %d payment rows", len(got.Payments))
	}

	paid, err := models.RegisterSalePayments(ctx, sale.ID, []models.NewSalePayment{
		{PaymentModeId: cash.ID, Amount: decimal.NewFromFloat(5.00)},
		{PaymentModeId: term30.ID, Amount: decimal.NewFromFloat(4.00)},
	})
	if err != nil {
		t.Fatalf("split payment: %v", err)
	}
	if paid.Status != models.SaleStatusPaid {
		t.Fatalf("status after full split = %s, want Paid", paid.Status)
	}
	if !paid.Pending().IsZero() {
		t.Fatalf("pending after full split = %s, want 0", paid.Pending())
	}
	settled, err := models.GetReceivable(ctx, linked.ID)
	if err != nil {
		t.Fatalf("GetReceivable: %v", err)
	}
	if settled.Status != models.ReceivableStatusSettled {
		t.Fatalf("receivable status = %s, want Settled", settled.Status)
	}

	// Counter sale finalizes without a receivable, then cancels cleanly.
	counter, err := models.CreateSale(ctx, &models.NewSale{
		PaymentModeId: &cash.ID,
		Items: []models.NewSaleItem{
			{ProductId: bottle.ID, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("counter sale: %v", err)
	}
	if counter.Number != "VD000002" {
		t.Fatalf("second sale number = %q, want VD000002", counter.Number)
	}
	if counter.Status != models.SaleStatusFinalized {
		t.Fatalf("counter sale status = %s, want Finalized", counter.Status)
	}

	// Sale-owned movements cannot be deleted on their own.
	var saleMovement models.StockMovement
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("sale_id = ?", counter.ID).First(&saleMovement).Error; err != nil {
		t.Fatalf("fetch sale movement: %v", err)
	}
	if _, err := models.DeleteMovement(ctx, saleMovement.ID); err == nil {
		t.Fatal("deleting a sale-owned movement should fail")
	}

	before := mustGetProduct(t, ctx, bottle.ID).StockQty
	cancelled, err := models.CancelSale(ctx, counter.ID)
	if err != nil {
		t.Fatalf("CancelSale: %v", err)
	}
	if cancelled.Status != models.SaleStatusCancelled {
		t.Fatalf("status after cancel = %s, want Cancelled", cancelled.Status)
	}
	if got := mustGetProduct(t, ctx, bottle.ID).StockQty; got != before+3 {
		t.Fatalf("stock after cancel = %d, want %d", got, before+3)
	}
	var remaining int64
	if err := db.WithContext(ctx).Model(&models.StockMovement{}).Where("sale_id = ?", counter.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count sale movements: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("%d sale movements survived cancellation", remaining)
	}

	// Standalone receivable path.
	standalone, err := models.CreateReceivable(ctx, &models.NewReceivable{
		CustomerId: customer.ID,
		Amount:     decimal.NewFromFloat(20.00),
		DueDate:    time.Now().AddDate(0, 0, 15),
	})
	if err != nil {
		t.Fatalf("CreateReceivable: %v", err)
	}
	partial, err := models.PayReceivable(ctx, standalone.ID, &models.NewReceivablePayment{
		PaymentModeId: cash.ID,
		Amount:        decimal.NewFromFloat(8.00),
	})
	if err != nil {
		t.Fatalf("PayReceivable: %v", err)
	}
	if partial.Status != models.ReceivableStatusPartial {
		t.Fatalf("receivable status = %s, want Partial", partial.Status)
	}
	if want := decimal.NewFromFloat(12.00); !partial.Pending().Equal(want) {
		t.Fatalf("receivable pending = %s, want %s", partial.Pending(), want)
	}
	_, err = models.PayReceivable(ctx, standalone.ID, &models.NewReceivablePayment{
		PaymentModeId: cash.ID,
		Amount:        decimal.NewFromFloat(12.50),
	})
	if !errors.Is(err, models.ErrOverpayment) {
		t.Fatalf("receivable overpay error = %v, want ErrOverpayment", err)
	}

	// Term sale paid through its receivable: the note travels with the
	// payment, a one-cent overshoot is absorbed, two cents is not.
	termSale, err := models.CreateSale(ctx, &models.NewSale{
		CustomerId:    &customer.ID,
		PaymentModeId: &term30.ID,
		Items: []models.NewSaleItem{
			{ProductId: bottle.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("term sale: %v", err)
	}
	_, err = models.RegisterSalePayments(ctx, termSale.ID, []models.NewSalePayment{
		{PaymentModeId: cash.ID, Amount: decimal.Zero},
	})
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("zero-amount split error = %v, want ErrInvalidAmount", err)
	}

	var termLinked models.Receivable
	if err := db.WithContext(ctx).Where("sale_id = ?", termSale.ID).First(&termLinked).Error; err != nil {
		t.Fatalf("fetch linked receivable: %v", err)
	}
	_, err = models.PayReceivable(ctx, termLinked.ID, &models.NewReceivablePayment{
		PaymentModeId: cash.ID,
		Amount:        decimal.NewFromFloat(2.52),
	})
	if !errors.Is(err, models.ErrOverpayment) {
		t.Fatalf("two-cent overshoot error = %v, want ErrOverpayment", err)
	}
	settledLinked, err := models.PayReceivable(ctx, termLinked.ID, &models.NewReceivablePayment{
		PaymentModeId: cash.ID,
		Amount:        decimal.NewFromFloat(2.51),
		Note:          "pix",
	})
	if err != nil {
		t.Fatalf("one-cent overshoot payment: %v", err)
	}
	if settledLinked.Status != models.ReceivableStatusSettled {
		t.Fatalf("linked receivable status = %s, want Settled", settledLinked.Status)
	}
	termSale = mustGetSale(t, ctx, termSale.ID)
	if termSale.Status != models.SaleStatusPaid {
		t.Fatalf("term sale status = %s, want Paid", termSale.Status)
	}
	if len(termSale.Payments) != 1 || termSale.Payments[0].Note != "pix" {
		t.Fatalf("payment note did not survive the receivable route: %+v", termSale.Payments)
	}

	// Numbering keeps advancing once the sequence outgrows the padded width.
	seeded := models.Sale{
		Number:     "VD999999",
		Status:     models.SaleStatusFinalized,
		OperatorId: operator.ID,
	}
	if err := db.WithContext(ctx).Create(&seeded).Error; err != nil {
		t.Fatalf("seed high-number sale: %v", err)
	}
	wide, err := models.CreateSale(ctx, &models.NewSale{
		PaymentModeId: &cash.ID,
		Items:         []models.NewSaleItem{{ProductId: bottle.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("sale after VD999999: %v", err)
	}
	if wide.Number != "VD1000000" {
		t.Fatalf("number after VD999999 = %q, want VD1000000", wide.Number)
	}
}

func mustGetProduct(t *testing.T, ctx context.Context, id int) *models.Product {
	t.Helper()
	product, err := models.GetProduct(ctx, id)
	if err != nil {
		t.Fatalf("GetProduct %d: %v", id, err)
	}
	return product
}

func mustGetSale(t *testing.T, ctx context.Context, id int) *models.Sale {
	t.Helper()
	sale, err := models.GetSale(ctx, id)
	if err != nil {
		t.Fatalf("GetSale %d: %v", id, err)
	}
	return sale
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("estoque-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=estoque_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
