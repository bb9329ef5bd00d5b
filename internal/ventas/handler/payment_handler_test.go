package handler_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/testutil"
	"gorm.io/gorm"
)

func seedCompletedOrder(t *testing.T, db *gorm.DB, clientID string, total float64) *entity.SalesOrder {
	t.Helper()
	order := &entity.SalesOrder{
		ID:          "order-pay-" + fmt.Sprint(time.Now().UnixNano()%100000),
		CompanyID:   testutil.TestCompany,
		OrderCode:   "PED-PAY-" + fmt.Sprint(time.Now().UnixNano()%100000),
		ClientID:    clientID,
		SellerID:    "test-user-001",
		Status:      entity.SOStatusCompleted,
		TotalAmount: total,
		Currency:    "ARS",
		CreatedBy:   "test-user-001",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func TestPaymentFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	token := testutil.DefaultTestToken()

	client := testutil.SeedTestClient(t, env.DB, "cli-pay", "Cliente Pago SA")
	order := seedCompletedOrder(t, env.DB, client.ID, 150000)

	// Issue invoice
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/facturas", map[string]interface{}{
		"order_id": order.ID,
	}, token)
	if w.Code != 201 {
		t.Fatalf("issue invoice: status = %d, body = %s", w.Code, w.Body.String())
	}
	invoiceData := testutil.ParseResponse(w)["data"].(map[string]interface{})
	invoiceID := invoiceData["id"].(string)
	if invoiceData["status"] != entity.InvoiceStatusIssued {
		t.Fatalf("invoice status = %v, want EMITIDA", invoiceData["status"])
	}
	if invoiceData["total_amount"].(float64) != 150000 {
		t.Fatalf("invoice total = %v, want 150000", invoiceData["total_amount"])
	}

	// Register a partial payment
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos", map[string]interface{}{
		"invoice_id": invoiceID,
		"amount":     100000,
		"method":     entity.PaymentMethodTransfer,
		"reference":  "TRF-0001",
	}, token)
	if w.Code != 201 {
		t.Fatalf("register payment: status = %d, body = %s", w.Code, w.Body.String())
	}
	payment1 := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// Confirm the first one: invoice not fully paid, stays EMITIDA
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos/"+payment1+"/confirmar", nil, token)
	if w.Code != 200 {
		t.Fatalf("confirm payment 1: status = %d, body = %s", w.Code, w.Body.String())
	}
	var invoice entity.Invoice
	env.DB.First(&invoice, "id = ?", invoiceID)
	if invoice.Status != entity.InvoiceStatusIssued {
		t.Fatalf("invoice after partial payment = %s, want EMITIDA", invoice.Status)
	}
	if invoice.PaidAmount != 100000 {
		t.Fatalf("paid_amount = %.2f, want 100000", invoice.PaidAmount)
	}

	// Confirmed payment cannot be confirmed again
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos/"+payment1+"/confirmar", nil, token)
	if w.Code != 422 {
		t.Fatalf("double confirm: status = %d, want 422", w.Code)
	}

	// Second payment covers the balance
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos", map[string]interface{}{
		"invoice_id": invoiceID,
		"amount":     50000,
		"method":     entity.PaymentMethodCash,
	}, token)
	if w.Code != 201 {
		t.Fatalf("register payment 2: status = %d", w.Code)
	}
	payment2 := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos/"+payment2+"/confirmar", nil, token)
	if w.Code != 200 {
		t.Fatalf("confirm payment 2: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Fully paid invoice moves to PAGADA automatically
	env.DB.First(&invoice, "id = ?", invoiceID)
	if invoice.Status != entity.InvoiceStatusPaid {
		t.Fatalf("invoice = %s, want PAGADA", invoice.Status)
	}
	if invoice.PaidAmount != 150000 {
		t.Fatalf("paid_amount = %.2f, want 150000", invoice.PaidAmount)
	}

	// Audit rows for both the payment confirmation and the invoice transition
	var paymentHistory int64
	env.DB.Model(&entity.StatusHistory{}).
		Where("entity_type = ? AND entity_id = ?", "client_payment", payment2).
		Count(&paymentHistory)
	if paymentHistory != 1 {
		t.Fatalf("payment history rows = %d, want 1", paymentHistory)
	}
	var invoiceHistory int64
	env.DB.Model(&entity.StatusHistory{}).
		Where("entity_type = ? AND entity_id = ?", "invoice", invoiceID).
		Count(&invoiceHistory)
	if invoiceHistory != 1 {
		t.Fatalf("invoice history rows = %d, want 1", invoiceHistory)
	}
}

func TestRejectPayment(t *testing.T) {
	env := testutil.NewEnv(t)
	token := testutil.DefaultTestToken()

	client := testutil.SeedTestClient(t, env.DB, "cli-rejpay", "Cliente Rechazo Pago SA")
	order := seedCompletedOrder(t, env.DB, client.ID, 50000)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/facturas", map[string]interface{}{
		"order_id": order.ID,
	}, token)
	if w.Code != 201 {
		t.Fatalf("issue invoice: status = %d", w.Code)
	}
	invoiceID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos", map[string]interface{}{
		"invoice_id": invoiceID,
		"amount":     50000,
	}, token)
	if w.Code != 201 {
		t.Fatalf("register payment: status = %d", w.Code)
	}
	paymentID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// Rejection requires a reason
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos/"+paymentID+"/rechazar",
		map[string]interface{}{}, token)
	if w.Code != 400 {
		t.Fatalf("reject without reason: status = %d, want 400", w.Code)
	}

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/pagos/"+paymentID+"/rechazar",
		map[string]interface{}{"reason": "comprobante ilegible"}, token)
	if w.Code != 200 {
		t.Fatalf("reject: status = %d, body = %s", w.Code, w.Body.String())
	}

	var payment entity.ClientPayment
	env.DB.First(&payment, "id = ?", paymentID)
	if payment.Status != entity.PaymentStatusRejected {
		t.Fatalf("payment = %s, want RECHAZADO", payment.Status)
	}

	// Rejected payment leaves the invoice untouched
	var invoice entity.Invoice
	env.DB.First(&invoice, "id = ?", invoiceID)
	if invoice.PaidAmount != 0 || invoice.Status != entity.InvoiceStatusIssued {
		t.Fatalf("invoice should be untouched, got %s paid %.2f", invoice.Status, invoice.PaidAmount)
	}
}

func TestInvoiceRequiresCompletedOrder(t *testing.T) {
	env := testutil.NewEnv(t)
	token := testutil.DefaultTestToken()

	client := testutil.SeedTestClient(t, env.DB, "cli-inv", "Cliente Factura SA")
	order := seedConfirmedOrder(t, env.DB, client.ID)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/facturas", map[string]interface{}{
		"order_id": order.ID,
	}, token)
	if w.Code != 422 {
		t.Fatalf("invoice for uncompleted order: status = %d, want 422", w.Code)
	}
}
