package lifecycle

import "github.com/bitfantasy/nimo-ventas/internal/ventas/entity"

// DocumentType 单据类型
type DocumentType string

const (
	DocQuote      DocumentType = "quote"
	DocSalesOrder DocumentType = "sales_order"
	DocDelivery   DocumentType = "delivery"
	DocInvoice    DocumentType = "invoice"
	DocPayment    DocumentType = "client_payment"
)

// transitions 各单据类型的合法状态迁移表
// 未在此声明的 (type, from, to) 一律拒绝，新增状态/迁移只需改这张表
var transitions = map[DocumentType]map[string][]string{
	DocQuote: {
		entity.QuoteStatusDraft:           {entity.QuoteStatusPendingApproval, entity.QuoteStatusApproved, entity.QuoteStatusExpired},
		entity.QuoteStatusPendingApproval: {entity.QuoteStatusApproved, entity.QuoteStatusRejected, entity.QuoteStatusDraft},
		entity.QuoteStatusApproved:        {entity.QuoteStatusConverted, entity.QuoteStatusExpired},
	},
	DocSalesOrder: {
		entity.SOStatusPending:   {entity.SOStatusConfirmed, entity.SOStatusCancelled},
		entity.SOStatusConfirmed: {entity.SOStatusPreparing, entity.SOStatusCancelled},
		entity.SOStatusPreparing: {entity.SOStatusCompleted},
	},
	DocDelivery: {
		entity.DeliveryStatusReady:     {entity.DeliveryStatusInTransit},
		entity.DeliveryStatusInTransit: {entity.DeliveryStatusDelivered, entity.DeliveryStatusFailed},
		entity.DeliveryStatusFailed:    {entity.DeliveryStatusInTransit},
	},
	DocInvoice: {
		entity.InvoiceStatusIssued: {entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
	},
	DocPayment: {
		entity.PaymentStatusPending: {entity.PaymentStatusConfirmed, entity.PaymentStatusRejected},
	},
}

// IsValidTransition 判断迁移是否合法，未知的类型/状态/边均返回false
func IsValidTransition(docType DocumentType, from, to string) bool {
	graph, ok := transitions[docType]
	if !ok {
		return false
	}
	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KnownStates 返回类型的全部已声明状态（含仅作为迁移目标的终态）
func KnownStates(docType DocumentType) []string {
	graph, ok := transitions[docType]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var states []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			states = append(states, s)
		}
	}
	for from, tos := range graph {
		add(from)
		for _, to := range tos {
			add(to)
		}
	}
	return states
}

// IsTerminal 判断状态是否为终态（没有任何出边）
func IsTerminal(docType DocumentType, state string) bool {
	graph, ok := transitions[docType]
	if !ok {
		return false
	}
	known := false
	for from, tos := range graph {
		if from == state {
			known = true
			if len(tos) > 0 {
				return false
			}
		}
		for _, to := range tos {
			if to == state {
				known = true
			}
		}
	}
	if !known {
		return false
	}
	return len(graph[state]) == 0
}
