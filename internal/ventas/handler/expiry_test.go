package handler_test

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/testutil"
)

func TestExpireWorkflowsReturnsQuoteToDraft(t *testing.T) {
	env := testutil.NewEnv(t)
	token := testutil.DefaultTestToken()

	client := testutil.SeedTestClient(t, env.DB, "cli-exp", "Cliente Expira SA")
	quoteID := createQuote(t, env, token, client.ID, 100, 90, 6000)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/solicitar-aprobacion", nil, token)
	if w.Code != 200 {
		t.Fatalf("request approval: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Backdate the workflow expiry
	past := time.Now().Add(-time.Hour)
	if err := env.DB.Model(&entity.ApprovalWorkflow{}).
		Where("quote_id = ?", quoteID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("Failed to backdate workflow: %v", err)
	}

	count, err := env.Services.Approval.ExpireWorkflows(context.Background())
	if err != nil {
		t.Fatalf("ExpireWorkflows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expired count = %d, want 1", count)
	}

	var wf entity.ApprovalWorkflow
	env.DB.First(&wf, "quote_id = ?", quoteID)
	if wf.Status != entity.ApprovalStatusExpired {
		t.Fatalf("workflow = %s, want EXPIRADO", wf.Status)
	}

	var quote entity.Quote
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusDraft {
		t.Fatalf("quote = %s, want BORRADOR", quote.Status)
	}

	var history int64
	env.DB.Model(&entity.StatusHistory{}).
		Where("entity_type = ? AND entity_id = ? AND user_id = ?", "quote", quoteID, "system").
		Count(&history)
	if history != 1 {
		t.Fatalf("system history rows = %d, want 1", history)
	}

	// A second sweep must not process it again
	count, err = env.Services.Approval.ExpireWorkflows(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if count != 0 {
		t.Fatalf("second sweep expired = %d, want 0", count)
	}
}

func TestExpireStaleQuotes(t *testing.T) {
	env := testutil.NewEnv(t)
	token := testutil.DefaultTestToken()

	client := testutil.SeedTestClient(t, env.DB, "cli-stale", "Cliente Vencido SA")
	quoteID := createQuote(t, env, token, client.ID, 100, 50, 100)

	past := time.Now().Add(-24 * time.Hour)
	if err := env.DB.Model(&entity.Quote{}).
		Where("id = ?", quoteID).
		Update("valid_until", past).Error; err != nil {
		t.Fatalf("Failed to backdate quote: %v", err)
	}

	count, err := env.Services.Quote.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if count != 1 {
		t.Fatalf("stale count = %d, want 1", count)
	}

	var quote entity.Quote
	env.DB.First(&quote, "id = ?", quoteID)
	if quote.Status != entity.QuoteStatusExpired {
		t.Fatalf("quote = %s, want VENCIDA", quote.Status)
	}

	// Expired quote can no longer be converted
	w := testutil.DoRequest(env.Router, "POST", "/api/v1/ventas/cotizaciones/"+quoteID+"/convertir", nil, token)
	if w.Code != 422 {
		t.Fatalf("convert expired quote: status = %d, want 422", w.Code)
	}
}
