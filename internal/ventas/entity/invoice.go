package entity

import "time"

// InvoiceStatus 发票状态
const (
	InvoiceStatusIssued    = "EMITIDA"
	InvoiceStatusPaid      = "PAGADA"
	InvoiceStatusCancelled = "ANULADA"
)

// Invoice 销售发票
type Invoice struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID   string     `json:"company_id" gorm:"size:36;not null;index"`
	InvoiceCode string     `json:"invoice_code" gorm:"size:50;not null;uniqueIndex"`
	OrderID     string     `json:"order_id" gorm:"size:36;not null;index"`
	ClientID    string     `json:"client_id" gorm:"size:36;not null;index"`
	Status      string     `json:"status" gorm:"size:30;not null;default:EMITIDA"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	PaidAmount  float64    `json:"paid_amount" gorm:"type:decimal(14,2);default:0"`
	Currency    string     `json:"currency" gorm:"size:10;not null;default:ARS"`
	IssuedAt    *time.Time `json:"issued_at"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	Order  *SalesOrder `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Client *Client     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Invoice) TableName() string {
	return "ventas_invoices"
}

// PaymentStatus 客户付款状态
const (
	PaymentStatusPending   = "PENDIENTE"
	PaymentStatusConfirmed = "CONFIRMADO"
	PaymentStatusRejected  = "RECHAZADO"
)

// PaymentMethod 付款方式
const (
	PaymentMethodTransfer = "TRANSFERENCIA"
	PaymentMethodCash     = "EFECTIVO"
	PaymentMethodCheck    = "CHEQUE"
)

// ClientPayment 客户付款
type ClientPayment struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID   string     `json:"company_id" gorm:"size:36;not null;index"`
	PaymentCode string     `json:"payment_code" gorm:"size:50;not null;uniqueIndex"`
	InvoiceID   string     `json:"invoice_id" gorm:"size:36;not null;index"`
	ClientID    string     `json:"client_id" gorm:"size:36;not null;index"`
	Status      string     `json:"status" gorm:"size:30;not null;default:PENDIENTE"`
	Amount      float64    `json:"amount" gorm:"type:decimal(14,2);not null"`
	Method      string     `json:"method" gorm:"size:30;not null;default:TRANSFERENCIA"`
	Reference   string     `json:"reference" gorm:"size:100"`
	PaidAt      *time.Time `json:"paid_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ConfirmedBy string     `json:"confirmed_by" gorm:"size:36"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Invoice *Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`
	Client  *Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (ClientPayment) TableName() string {
	return "ventas_client_payments"
}
