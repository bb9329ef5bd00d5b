package service

import (
	"testing"

	"github.com/bitfantasy/nimo-ventas/internal/config"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
)

func testApprovalService() *ApprovalService {
	return &ApprovalService{
		cfg: config.ApprovalConfig{
			MinimumMargin:  15.0,
			HighAmount:     500000,
			VeryHighAmount: 1000000,
			ExpiryDays:     7,
		},
	}
}

// 10%毛利、60万总额：低毛利且超50万 → MARGEN_BAJO，2级
func TestEvaluateQuote_LowMarginHighAmount(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 90, Quantity: 6000},
	}
	decision := svc.EvaluateQuote(items, 600000)

	if !decision.Required {
		t.Fatal("approval should be required")
	}
	if decision.Reason != entity.ApprovalReasonLowMargin {
		t.Errorf("reason = %s, want MARGEN_BAJO", decision.Reason)
	}
	if decision.RequiredLevels != 2 {
		t.Errorf("levels = %d, want 2", decision.RequiredLevels)
	}
	if decision.CurrentMargin != 10 {
		t.Errorf("margin = %.2f, want 10", decision.CurrentMargin)
	}
}

// 10%毛利、10万总额：低毛利但不超50万 → MARGEN_BAJO，1级
func TestEvaluateQuote_LowMarginLowAmount(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 90, Quantity: 1000},
	}
	decision := svc.EvaluateQuote(items, 100000)

	if !decision.Required {
		t.Fatal("approval should be required")
	}
	if decision.Reason != entity.ApprovalReasonLowMargin {
		t.Errorf("reason = %s, want MARGEN_BAJO", decision.Reason)
	}
	if decision.RequiredLevels != 1 {
		t.Errorf("levels = %d, want 1", decision.RequiredLevels)
	}
}

// 20%毛利、120万总额：毛利达标但超100万 → MONTO_ALTO，2级
func TestEvaluateQuote_VeryHighAmount(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 80, Quantity: 12000},
	}
	decision := svc.EvaluateQuote(items, 1200000)

	if !decision.Required {
		t.Fatal("approval should be required")
	}
	if decision.Reason != entity.ApprovalReasonHighAmount {
		t.Errorf("reason = %s, want MONTO_ALTO", decision.Reason)
	}
	if decision.RequiredLevels != 2 {
		t.Errorf("levels = %d, want 2", decision.RequiredLevels)
	}
}

// 20%毛利、60万总额：毛利达标、超50万不超100万 → MONTO_ALTO，1级
func TestEvaluateQuote_HighAmount(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 80, Quantity: 6000},
	}
	decision := svc.EvaluateQuote(items, 600000)

	if !decision.Required {
		t.Fatal("approval should be required")
	}
	if decision.Reason != entity.ApprovalReasonHighAmount {
		t.Errorf("reason = %s, want MONTO_ALTO", decision.Reason)
	}
	if decision.RequiredLevels != 1 {
		t.Errorf("levels = %d, want 1", decision.RequiredLevels)
	}
}

// 20%毛利、10万总额：无需审批
func TestEvaluateQuote_NotRequired(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 80, Quantity: 1000},
	}
	decision := svc.EvaluateQuote(items, 100000)

	if decision.Required {
		t.Fatalf("approval should not be required: %+v", decision)
	}
	if decision.RequiredLevels != 0 {
		t.Errorf("levels = %d, want 0", decision.RequiredLevels)
	}
}

// All items without cost: margin sampled as 0, so MARGEN_BAJO
func TestEvaluateQuote_ZeroCostDefaultsToLowMargin(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 0, Quantity: 10},
	}
	decision := svc.EvaluateQuote(items, 1000)

	if !decision.Required {
		t.Fatal("zero-cost quote should trigger approval")
	}
	if decision.Reason != entity.ApprovalReasonLowMargin {
		t.Errorf("reason = %s, want MARGEN_BAJO", decision.Reason)
	}
	if decision.CurrentMargin != 0 {
		t.Errorf("margin = %.2f, want 0", decision.CurrentMargin)
	}
}

// Mixed items: only those with cost data are sampled
func TestEvaluateQuote_SkipsZeroCostItems(t *testing.T) {
	svc := testApprovalService()
	items := []entity.QuoteItem{
		{UnitPrice: 100, UnitCost: 80, Quantity: 10}, // 20%
		{UnitPrice: 100, UnitCost: 0, Quantity: 10},  // not sampled
		{UnitPrice: 100, UnitCost: 60, Quantity: 10}, // 40%
	}
	decision := svc.EvaluateQuote(items, 3000)

	if decision.CurrentMargin != 30 {
		t.Errorf("margin = %.2f, want 30 (avg of sampled rows)", decision.CurrentMargin)
	}
	if decision.Required {
		t.Errorf("30%% margin on small amount should not require approval")
	}
}
