package lifecycle

import (
	"testing"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
)

func TestIsValidTransition_DeclaredEdges(t *testing.T) {
	cases := []struct {
		docType DocumentType
		from    string
		to      string
	}{
		{DocQuote, entity.QuoteStatusDraft, entity.QuoteStatusPendingApproval},
		{DocQuote, entity.QuoteStatusDraft, entity.QuoteStatusApproved},
		{DocQuote, entity.QuoteStatusDraft, entity.QuoteStatusExpired},
		{DocQuote, entity.QuoteStatusPendingApproval, entity.QuoteStatusApproved},
		{DocQuote, entity.QuoteStatusPendingApproval, entity.QuoteStatusRejected},
		{DocQuote, entity.QuoteStatusPendingApproval, entity.QuoteStatusDraft},
		{DocQuote, entity.QuoteStatusApproved, entity.QuoteStatusConverted},
		{DocQuote, entity.QuoteStatusApproved, entity.QuoteStatusExpired},
		{DocSalesOrder, entity.SOStatusPending, entity.SOStatusConfirmed},
		{DocSalesOrder, entity.SOStatusPending, entity.SOStatusCancelled},
		{DocSalesOrder, entity.SOStatusConfirmed, entity.SOStatusPreparing},
		{DocSalesOrder, entity.SOStatusConfirmed, entity.SOStatusCancelled},
		{DocSalesOrder, entity.SOStatusPreparing, entity.SOStatusCompleted},
		{DocDelivery, entity.DeliveryStatusReady, entity.DeliveryStatusInTransit},
		{DocDelivery, entity.DeliveryStatusInTransit, entity.DeliveryStatusDelivered},
		{DocDelivery, entity.DeliveryStatusInTransit, entity.DeliveryStatusFailed},
		{DocDelivery, entity.DeliveryStatusFailed, entity.DeliveryStatusInTransit},
		{DocInvoice, entity.InvoiceStatusIssued, entity.InvoiceStatusPaid},
		{DocInvoice, entity.InvoiceStatusIssued, entity.InvoiceStatusCancelled},
		{DocPayment, entity.PaymentStatusPending, entity.PaymentStatusConfirmed},
		{DocPayment, entity.PaymentStatusPending, entity.PaymentStatusRejected},
	}
	for _, c := range cases {
		if !IsValidTransition(c.docType, c.from, c.to) {
			t.Errorf("%s: %s → %s should be valid", c.docType, c.from, c.to)
		}
	}
}

func TestIsValidTransition_DenyByDefault(t *testing.T) {
	cases := []struct {
		name    string
		docType DocumentType
		from    string
		to      string
	}{
		{"delivered is terminal", DocDelivery, entity.DeliveryStatusDelivered, entity.DeliveryStatusInTransit},
		{"cannot skip transit", DocDelivery, entity.DeliveryStatusReady, entity.DeliveryStatusDelivered},
		{"converted is terminal", DocQuote, entity.QuoteStatusConverted, entity.QuoteStatusDraft},
		{"rejected quote cannot convert", DocQuote, entity.QuoteStatusRejected, entity.QuoteStatusConverted},
		{"preparing cannot cancel", DocSalesOrder, entity.SOStatusPreparing, entity.SOStatusCancelled},
		{"completed is terminal", DocSalesOrder, entity.SOStatusCompleted, entity.SOStatusPending},
		{"paid invoice cannot cancel", DocInvoice, entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
		{"confirmed payment is final", DocPayment, entity.PaymentStatusConfirmed, entity.PaymentStatusPending},
		{"rejected payment cannot confirm", DocPayment, entity.PaymentStatusRejected, entity.PaymentStatusConfirmed},
		{"same state is not a transition", DocDelivery, entity.DeliveryStatusInTransit, entity.DeliveryStatusInTransit},
		{"unknown doc type", DocumentType("unknown"), "A", "B"},
		{"unknown from state", DocDelivery, "INVENTADO", entity.DeliveryStatusInTransit},
		{"unknown to state", DocDelivery, entity.DeliveryStatusReady, "INVENTADO"},
		{"empty states", DocQuote, "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if IsValidTransition(c.docType, c.from, c.to) {
				t.Errorf("%s: %s → %s should be rejected", c.docType, c.from, c.to)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminals := []struct {
		docType DocumentType
		state   string
	}{
		{DocQuote, entity.QuoteStatusConverted},
		{DocQuote, entity.QuoteStatusRejected},
		{DocQuote, entity.QuoteStatusExpired},
		{DocSalesOrder, entity.SOStatusCompleted},
		{DocSalesOrder, entity.SOStatusCancelled},
		{DocDelivery, entity.DeliveryStatusDelivered},
		{DocInvoice, entity.InvoiceStatusPaid},
		{DocPayment, entity.PaymentStatusConfirmed},
		{DocPayment, entity.PaymentStatusRejected},
	}
	for _, c := range terminals {
		if !IsTerminal(c.docType, c.state) {
			t.Errorf("%s %s should be terminal", c.docType, c.state)
		}
	}

	// ENTREGA_FALLIDA允许重发，不是终态
	if IsTerminal(DocDelivery, entity.DeliveryStatusFailed) {
		t.Error("ENTREGA_FALLIDA should allow retry, not terminal")
	}
	if IsTerminal(DocQuote, entity.QuoteStatusDraft) {
		t.Error("BORRADOR should not be terminal")
	}
	if IsTerminal(DocDelivery, "INVENTADO") {
		t.Error("unknown state should not report terminal")
	}
}

func TestKnownStates(t *testing.T) {
	states := KnownStates(DocDelivery)
	want := map[string]bool{
		entity.DeliveryStatusReady:     false,
		entity.DeliveryStatusInTransit: false,
		entity.DeliveryStatusDelivered: false,
		entity.DeliveryStatusFailed:    false,
	}
	for _, s := range states {
		if _, ok := want[s]; !ok {
			t.Errorf("unexpected state %s", s)
		}
		want[s] = true
	}
	for s, seen := range want {
		if !seen {
			t.Errorf("missing state %s", s)
		}
	}

	if KnownStates(DocumentType("unknown")) != nil {
		t.Error("unknown doc type should have no states")
	}
}
