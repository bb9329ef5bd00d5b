package notify

import "time"

// 通知事件类型
const (
	EventDeliveryDispatched = "entrega_despachada"
	EventDeliveryDelivered  = "entrega_entregada"
	EventDeliveryFailed     = "entrega_fallida"
	EventQuoteApproved      = "cotizacion_aprobada"
	EventQuoteRejected      = "cotizacion_rechazada"
	EventApprovalRequested  = "aprobacion_solicitada"
	EventPaymentConfirmed   = "pago_confirmado"
	EventClientBlocked      = "cliente_bloqueado"
	EventClientUnblocked    = "cliente_desbloqueado"
)

// Event 迁移成功后派发的通知事件
// 只在状态写入提交之后入队，发送失败不影响已提交的迁移
type Event struct {
	Type       string                 `json:"type"`
	CompanyID  string                 `json:"company_id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	EntityCode string                 `json:"entity_code"`
	UserID     string                 `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Notifier 外部通知通道（Discord webhook、邮件等）
type Notifier interface {
	Notify(event Event) error
}
