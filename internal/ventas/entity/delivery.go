package entity

import "time"

// DeliveryStatus 发货单状态
const (
	DeliveryStatusReady     = "LISTA_PARA_DESPACHO"
	DeliveryStatusInTransit = "EN_TRANSITO"
	DeliveryStatusDelivered = "ENTREGADA"
	DeliveryStatusFailed    = "ENTREGA_FALLIDA"
)

// Delivery 发货单
// 首次发货必须指定司机和车辆；配送失败后重新发货沿用原司机/车辆，可选覆盖
type Delivery struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID     string     `json:"company_id" gorm:"size:36;not null;index"`
	DeliveryCode  string     `json:"delivery_code" gorm:"size:50;not null;uniqueIndex"`
	OrderID       string     `json:"order_id" gorm:"size:36;not null;index"`
	ClientID      string     `json:"client_id" gorm:"size:36;not null;index"`
	Status        string     `json:"status" gorm:"size:30;not null;default:LISTA_PARA_DESPACHO"`
	DriverName    string     `json:"driver_name" gorm:"size:100"`
	Vehicle       string     `json:"vehicle" gorm:"size:100"`
	Address       string     `json:"address" gorm:"size:500"`
	DispatchedAt  *time.Time `json:"dispatched_at"`
	DeliveredAt   *time.Time `json:"delivered_at"`
	FailReason    string     `json:"fail_reason" gorm:"size:500"`
	RetryCount    int        `json:"retry_count" gorm:"default:0"`
	ReceiverName  string     `json:"receiver_name" gorm:"size:100"`
	ReceiverNotes string     `json:"receiver_notes" gorm:"size:500"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	Order  *SalesOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Client *Client     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Delivery) TableName() string {
	return "ventas_deliveries"
}
