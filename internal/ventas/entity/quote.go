package entity

import "time"

// QuoteStatus 报价单状态
const (
	QuoteStatusDraft           = "BORRADOR"
	QuoteStatusPendingApproval = "PENDIENTE_APROBACION"
	QuoteStatusApproved        = "APROBADA"
	QuoteStatusRejected        = "RECHAZADA"
	QuoteStatusConverted       = "CONVERTIDA"
	QuoteStatusExpired         = "VENCIDA"
)

// Quote 报价单
type Quote struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID   string     `json:"company_id" gorm:"size:36;not null;index"`
	QuoteCode   string     `json:"quote_code" gorm:"size:50;not null;uniqueIndex"`
	ClientID    string     `json:"client_id" gorm:"size:36;not null;index"`
	SellerID    string     `json:"seller_id" gorm:"size:36;not null"`
	Status      string     `json:"status" gorm:"size:30;not null;default:BORRADOR"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	Currency    string     `json:"currency" gorm:"size:10;not null;default:ARS"`
	ValidUntil  *time.Time `json:"valid_until"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	Client *Client     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Items  []QuoteItem `json:"items,omitempty" gorm:"foreignKey:QuoteID"`
}

func (Quote) TableName() string {
	return "ventas_quotes"
}

// QuoteItem 报价单明细
// UnitCost用于审批引擎的毛利率计算，成本为0的行不参与采样
type QuoteItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	QuoteID     string    `json:"quote_id" gorm:"size:36;not null;index"`
	ProductID   string    `json:"product_id" gorm:"size:36;not null"`
	ProductCode string    `json:"product_code" gorm:"size:64"`
	ProductName string    `json:"product_name" gorm:"size:200"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	UnitCost    float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	Amount      float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Quote *Quote `json:"quote,omitempty" gorm:"foreignKey:QuoteID"`
}

func (QuoteItem) TableName() string {
	return "ventas_quote_items"
}
