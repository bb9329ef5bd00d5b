package entity

import "time"

// SalesOrderStatus 销售订单状态
const (
	SOStatusPending   = "PENDIENTE"
	SOStatusConfirmed = "CONFIRMADA"
	SOStatusPreparing = "EN_PREPARACION"
	SOStatusCompleted = "COMPLETADA"
	SOStatusCancelled = "ANULADA"
)

// SalesOrder 销售订单（由已批准的报价单转换而来）
type SalesOrder struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID       string     `json:"company_id" gorm:"size:36;not null;index"`
	OrderCode       string     `json:"order_code" gorm:"size:50;not null;uniqueIndex"`
	QuoteID         *string    `json:"quote_id" gorm:"size:36;index"`
	ClientID        string     `json:"client_id" gorm:"size:36;not null;index"`
	SellerID        string     `json:"seller_id" gorm:"size:36;not null"`
	Status          string     `json:"status" gorm:"size:30;not null;default:PENDIENTE"`
	TotalAmount     float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency        string     `json:"currency" gorm:"size:10;not null;default:ARS"`
	OrderDate       *time.Time `json:"order_date"`
	ShippingAddress string     `json:"shipping_address" gorm:"size:500"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at" gorm:"index"`

	Client *Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Quote  *Quote   `json:"quote,omitempty" gorm:"foreignKey:QuoteID"`
	Items  []SOItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (SalesOrder) TableName() string {
	return "ventas_sales_orders"
}

// SOItem 销售订单明细
type SOItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID     string    `json:"order_id" gorm:"size:36;not null;index"`
	ProductID   string    `json:"product_id" gorm:"size:36;not null"`
	ProductCode string    `json:"product_code" gorm:"size:64"`
	ProductName string    `json:"product_name" gorm:"size:200"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Order *SalesOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}

func (SOItem) TableName() string {
	return "ventas_so_items"
}
