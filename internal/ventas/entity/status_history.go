package entity

import "time"

// StatusHistory 状态变更审计记录（追加写，创建后不可修改、不可删除）
// 与单据状态写入在同一事务内落库，保证审计链与实际状态一致
type StatusHistory struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	CompanyID  string    `json:"company_id" gorm:"size:36;not null;index"`
	EntityType string    `json:"entity_type" gorm:"size:50;not null;index:idx_history_entity"` // quote/sales_order/delivery/invoice/client_payment
	EntityID   string    `json:"entity_id" gorm:"size:36;not null;index:idx_history_entity"`
	EntityCode string    `json:"entity_code" gorm:"size:50"`
	FromStatus string    `json:"from_status" gorm:"size:30;not null"`
	ToStatus   string    `json:"to_status" gorm:"size:30;not null"`
	Reason     string    `json:"reason" gorm:"size:500"`
	UserID     string    `json:"user_id" gorm:"size:36;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StatusHistory) TableName() string {
	return "ventas_status_history"
}
