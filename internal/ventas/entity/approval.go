package entity

import "time"

// 审批流状态
const (
	ApprovalStatusPending  = "PENDIENTE"
	ApprovalStatusApproved = "APROBADO"
	ApprovalStatusRejected = "RECHAZADO"
	ApprovalStatusExpired  = "EXPIRADO"
)

// 审批触发原因
const (
	ApprovalReasonLowMargin  = "MARGEN_BAJO"
	ApprovalReasonHighAmount = "MONTO_ALTO"
)

// 审批层级所需角色
const (
	RoleSupervisor = "SUPERVISOR"
	RoleManager    = "GERENTE"
)

// ApprovalWorkflow 报价单审批流
// 毛利率低于下限或金额超过阈值时创建，1~2级审批，7天内未处理则过期
type ApprovalWorkflow struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	CompanyID      string     `json:"company_id" gorm:"size:36;not null;index"`
	QuoteID        string     `json:"quote_id" gorm:"size:36;not null;index"`
	Reason         string     `json:"reason" gorm:"size:30;not null"`
	CurrentMargin  float64    `json:"current_margin" gorm:"type:decimal(8,2)"`
	MinimumMargin  float64    `json:"minimum_margin" gorm:"type:decimal(8,2)"`
	TotalAmount    float64    `json:"total_amount" gorm:"type:decimal(14,2)"`
	RequiredLevels int        `json:"required_levels" gorm:"not null;default:1"`
	Status         string     `json:"status" gorm:"size:20;not null;default:PENDIENTE"`
	RequestedBy    string     `json:"requested_by" gorm:"size:36;not null"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Quote  *Quote          `json:"quote,omitempty" gorm:"foreignKey:QuoteID"`
	Levels []ApprovalLevel `json:"levels,omitempty" gorm:"foreignKey:WorkflowID"`
}

func (ApprovalWorkflow) TableName() string {
	return "ventas_approval_workflows"
}

// ApprovalLevel 审批层级
// 第1级由SUPERVISOR处理，第2级由GERENTE处理；第2级必须在第1级通过后才能处理
type ApprovalLevel struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	WorkflowID   string     `json:"workflow_id" gorm:"size:36;not null;index"`
	Level        int        `json:"level" gorm:"not null"`
	RequiredRole string     `json:"required_role" gorm:"size:30;not null"`
	Status       string     `json:"status" gorm:"size:20;not null;default:PENDIENTE"`
	ApprovedBy   string     `json:"approved_by" gorm:"size:36"`
	Comment      string     `json:"comment" gorm:"type:text"`
	DecidedAt    *time.Time `json:"decided_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Workflow *ApprovalWorkflow `json:"workflow,omitempty" gorm:"foreignKey:WorkflowID"`
}

func (ApprovalLevel) TableName() string {
	return "ventas_approval_levels"
}
