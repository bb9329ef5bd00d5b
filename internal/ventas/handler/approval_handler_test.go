package handler_test

import (
	"testing"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/testutil"
)

// createQuote posts a quote and returns its id
func createQuote(t *testing.T, env *testutil.TestEnv, token, clientID string, unitPrice, unitCost, qty float64) string {
	t.Helper()
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones", map[string]interface{}{
		"client_id": clientID,
		"items": []map[string]interface{}{
			{"product_id": "prod-1", "product_name": "Producto Uno", "quantity": qty, "unit_price": unitPrice, "unit_cost": unitCost},
		},
	}, token)
	if w.Code != 201 {
		t.Fatalf("create quote: status = %d, body = %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
}

func TestQuoteBelowThresholdsAutoApproved(t *testing.T) {
	env := testutil.NewEnv(t)
	seller := testutil.GenerateTestToken("seller-1", "Vendedor Uno", testutil.TestCompany, nil, []string{"*"})
	client := testutil.SeedTestClient(t, env.DB, "cli-auto", "Cliente Auto SA")

	// 20% margin, 100k total: no approval needed, straight to APROBADA
	quoteID := createQuote(t, env, seller, client.ID, 100, 80, 1000)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/solicitar-aprobacion", nil, seller)
	if w.Code != 200 {
		t.Fatalf("request approval: status = %d, body = %s", w.Code, w.Body.String())
	}

	var quote entity.Quote
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusApproved {
		t.Fatalf("quote status = %s, want APROBADA", quote.Status)
	}

	var wfCount int64
	env.DB.Model(&entity.ApprovalWorkflow{}).Where("quote_id = ?", quoteID).Count(&wfCount)
	if wfCount != 0 {
		t.Fatalf("auto-approval should not create a workflow, found %d", wfCount)
	}
}

func TestTwoLevelApprovalFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	seller := testutil.GenerateTestToken("seller-1", "Vendedor Uno", testutil.TestCompany, nil, []string{"*"})
	supervisor := testutil.SupervisorToken("super-1")
	manager := testutil.ManagerToken("manager-1")
	client := testutil.SeedTestClient(t, env.DB, "cli-flow", "Cliente Flujo SA")

	// 10%毛利、60万总额 → MARGEN_BAJO、2级
	quoteID := createQuote(t, env, seller, client.ID, 100, 90, 6000)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/solicitar-aprobacion", nil, seller)
	if w.Code != 200 {
		t.Fatalf("request approval: status = %d, body = %s", w.Code, w.Body.String())
	}

	var quote entity.Quote
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusPendingApproval {
		t.Fatalf("quote status = %s, want PENDIENTE_APROBACION", quote.Status)
	}

	var wf entity.ApprovalWorkflow
	if err := env.DB.First(&wf, "quote_id = ?", quoteID).Error; err != nil {
		t.Fatalf("workflow not created: %v", err)
	}
	if wf.Reason != entity.ApprovalReasonLowMargin || wf.RequiredLevels != 2 {
		t.Fatalf("workflow = %s/%d levels, want MARGEN_BAJO/2", wf.Reason, wf.RequiredLevels)
	}

	// Requester cannot approve their own workflow
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/aprobar",
		map[string]interface{}{"comment": "ok"},
		testutil.GenerateTestToken("seller-1", "Vendedor Uno", testutil.TestCompany, []string{entity.RoleSupervisor}, []string{"*"}))
	if w.Code != 403 {
		t.Fatalf("self approval: status = %d, want 403", w.Code)
	}

	// Level 2 cannot be decided before level 1
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/2/aprobar",
		map[string]interface{}{"comment": "ok"}, manager)
	if w.Code != 422 {
		t.Fatalf("level 2 before level 1: status = %d, want 422", w.Code)
	}

	// Level 1 requires the SUPERVISOR role
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/aprobar",
		map[string]interface{}{"comment": "ok"},
		testutil.GenerateTestToken("other-1", "Otro", testutil.TestCompany, nil, []string{"*"}))
	if w.Code != 403 {
		t.Fatalf("approve without role: status = %d, want 403", w.Code)
	}

	// SUPERVISOR过第1级
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/aprobar",
		map[string]interface{}{"comment": "margen aceptable"}, supervisor)
	if w.Code != 200 {
		t.Fatalf("approve level 1: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Workflow stays pending after level 1
	env.DB.First(&wf, "id = ?", wf.ID)
	if wf.Status != entity.ApprovalStatusPending {
		t.Fatalf("workflow after level 1 = %s, want PENDIENTE", wf.Status)
	}

	// GERENTE过第2级 → 审批流APROBADO、报价单APROBADA
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/2/aprobar",
		map[string]interface{}{"comment": "de acuerdo"}, manager)
	if w.Code != 200 {
		t.Fatalf("approve level 2: status = %d, body = %s", w.Code, w.Body.String())
	}

	env.DB.First(&wf, "id = ?", wf.ID)
	if wf.Status != entity.ApprovalStatusApproved {
		t.Fatalf("workflow = %s, want APROBADO", wf.Status)
	}
	if wf.ResolvedAt == nil {
		t.Fatal("resolved_at should be set")
	}
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusApproved {
		t.Fatalf("quote = %s, want APROBADA", quote.Status)
	}

	// Approved quote can be converted to an order
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/convertir",
		map[string]interface{}{"shipping_address": "Av. Santa Fe 500"}, seller)
	if w.Code != 201 {
		t.Fatalf("convert: status = %d, body = %s", w.Code, w.Body.String())
	}
	orderID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusConverted {
		t.Fatalf("quote after convert = %s, want CONVERTIDA", quote.Status)
	}
	var order entity.SalesOrder
	env.DB.First(&order, "id = ?", orderID)
	if order.Status != entity.SOStatusPending {
		t.Fatalf("order status = %s, want PENDIENTE", order.Status)
	}
	if order.QuoteID == nil || *order.QuoteID != quoteID {
		t.Fatal("order should reference source quote")
	}

	// Conversion only works once
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/convertir",
		map[string]interface{}{}, seller)
	if w.Code != 422 {
		t.Fatalf("second convert: status = %d, want 422", w.Code)
	}
}

func TestRejectionResolvesWorkflow(t *testing.T) {
	env := testutil.NewEnv(t)
	seller := testutil.GenerateTestToken("seller-1", "Vendedor Uno", testutil.TestCompany, nil, []string{"*"})
	supervisor := testutil.SupervisorToken("super-1")
	client := testutil.SeedTestClient(t, env.DB, "cli-reject", "Cliente Rechazo SA")

	quoteID := createQuote(t, env, seller, client.ID, 100, 90, 6000)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/solicitar-aprobacion", nil, seller)
	if w.Code != 200 {
		t.Fatalf("request approval: status = %d", w.Code)
	}
	var wf entity.ApprovalWorkflow
	env.DB.First(&wf, "quote_id = ?", quoteID)

	// Rejection requires a comment
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/rechazar",
		map[string]interface{}{}, supervisor)
	if w.Code != 400 {
		t.Fatalf("reject without comment: status = %d, want 400", w.Code)
	}

	// Any level rejection resolves the workflow as RECHAZADO and the quote as RECHAZADA
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/rechazar",
		map[string]interface{}{"comment": "margen demasiado bajo"}, supervisor)
	if w.Code != 200 {
		t.Fatalf("reject: status = %d, body = %s", w.Code, w.Body.String())
	}

	env.DB.First(&wf, "id = ?", wf.ID)
	if wf.Status != entity.ApprovalStatusRejected {
		t.Fatalf("workflow = %s, want RECHAZADO", wf.Status)
	}
	var quote entity.Quote
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusRejected {
		t.Fatalf("quote = %s, want RECHAZADA", quote.Status)
	}

	// Resolved workflow accepts no further decisions
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/aprobaciones/"+wf.ID+"/niveles/1/aprobar",
		map[string]interface{}{"comment": "tarde"}, supervisor)
	if w.Code != 422 {
		t.Fatalf("approve resolved workflow: status = %d, want 422", w.Code)
	}
}

func TestListPendingForRole(t *testing.T) {
	env := testutil.NewEnv(t)
	seller := testutil.GenerateTestToken("seller-1", "Vendedor Uno", testutil.TestCompany, nil, []string{"*"})
	client := testutil.SeedTestClient(t, env.DB, "cli-pending", "Cliente Pendiente SA")

	quoteID := createQuote(t, env, seller, client.ID, 100, 90, 6000)
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/solicitar-aprobacion", nil, seller)
	if w.Code != 200 {
		t.Fatalf("request approval: status = %d", w.Code)
	}

	// While level 1 is pending: visible to SUPERVISOR, hidden from GERENTE
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/ventas/aprobaciones/pendientes", nil, testutil.SupervisorToken("super-1"))
	if w.Code != 200 {
		t.Fatalf("pending for supervisor: status = %d", w.Code)
	}
	items := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("supervisor pending = %d, want 1", len(items))
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/ventas/aprobaciones/pendientes", nil, testutil.ManagerToken("manager-1"))
	if w.Code != 200 {
		t.Fatalf("pending for manager: status = %d", w.Code)
	}
	resp := testutil.ParseResponse(w)["data"].(map[string]interface{})["items"]
	if resp != nil {
		if list, ok := resp.([]interface{}); ok && len(list) != 0 {
			t.Fatalf("manager pending = %d, want 0", len(list))
		}
	}
}
