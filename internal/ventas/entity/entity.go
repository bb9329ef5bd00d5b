package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// JSONB PostgreSQL jsonb字段类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// AutoMigrate 自动迁移所有销售模块表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Client{},
		&ClientBlockHistory{},

		// 销售单据
		&Quote{},
		&QuoteItem{},
		&SalesOrder{},
		&SOItem{},
		&Delivery{},
		&Invoice{},
		&ClientPayment{},

		// 审批
		&ApprovalWorkflow{},
		&ApprovalLevel{},

		// 审计
		&StatusHistory{},
	)
}
