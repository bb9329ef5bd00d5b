package entity

import "time"

// ClientStatus 客户状态
const (
	ClientStatusActive   = "ACTIVO"
	ClientStatusInactive = "INACTIVO"
)

// 客户封锁/解封类型
const (
	BlockTypeManual  = "MANUAL"            // 人工封锁
	BlockTypeCredit  = "LIMITE_CREDITO"    // 超出信用额度
	BlockTypeOverdue = "FACTURAS_VENCIDAS" // 逾期未付款
	BlockTypeUnblock = "DESBLOQUEO"        // 解除封锁
)

// Client 客户
type Client struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID    string     `json:"company_id" gorm:"size:36;not null;index"`
	ClientCode   string     `json:"client_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	TaxID        string     `json:"tax_id" gorm:"size:50"`
	ContactName  string     `json:"contact_name" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:50"`
	Email        string     `json:"email" gorm:"size:100"`
	Address      string     `json:"address" gorm:"size:500"`
	CreditLimit  float64    `json:"credit_limit" gorm:"type:decimal(14,2);default:0"`
	PaymentTerms string     `json:"payment_terms" gorm:"size:50"`
	Status       string     `json:"status" gorm:"size:20;not null;default:ACTIVO"`
	Blocked      bool       `json:"blocked" gorm:"not null;default:false"`
	BlockReason  string     `json:"block_reason" gorm:"size:500"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:36;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Client) TableName() string {
	return "ventas_clients"
}

// ClientBlockHistory 客户封锁历史（追加写，不可修改）
type ClientBlockHistory struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	CompanyID     string    `json:"company_id" gorm:"size:36;not null;index"`
	ClientID      string    `json:"client_id" gorm:"size:36;not null;index"`
	Blocked       bool      `json:"blocked" gorm:"not null"`
	BlockType     string    `json:"block_type" gorm:"size:30;not null"`
	Reason        string    `json:"reason" gorm:"size:500"`
	DebtAmount    float64   `json:"debt_amount" gorm:"type:decimal(14,2);default:0"`
	OverdueAmount float64   `json:"overdue_amount" gorm:"type:decimal(14,2);default:0"`
	OperatorID    string    `json:"operator_id" gorm:"size:36;not null"`
	CreatedAt     time.Time `json:"created_at"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (ClientBlockHistory) TableName() string {
	return "ventas_client_block_history"
}
