package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"gorm.io/gorm"
)

// ApprovalRepository 审批流仓库
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// CreateTx 在事务内创建审批流（连同层级，与报价单状态更新同事务）
func (r *ApprovalRepository) CreateTx(tx *gorm.DB, wf *entity.ApprovalWorkflow) error {
	return tx.Create(wf).Error
}

func (r *ApprovalRepository) GetByID(ctx context.Context, companyID, id string) (*entity.ApprovalWorkflow, error) {
	var wf entity.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Quote").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&wf).Error
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

func (r *ApprovalRepository) GetByIDTx(tx *gorm.DB, companyID, id string) (*entity.ApprovalWorkflow, error) {
	var wf entity.ApprovalWorkflow
	err := tx.Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&wf).Error
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// GetOpenByQuote 查询报价单当前未结束的审批流
func (r *ApprovalRepository) GetOpenByQuote(ctx context.Context, companyID, quoteID string) (*entity.ApprovalWorkflow, error) {
	var wf entity.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Where("quote_id = ? AND company_id = ? AND status = ?", quoteID, companyID, entity.ApprovalStatusPending).
		First(&wf).Error
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// ApprovalListParams 审批流列表查询参数
type ApprovalListParams struct {
	Status string
	Reason string
	Page   int
	Size   int
}

func (r *ApprovalRepository) List(ctx context.Context, companyID string, params ApprovalListParams) ([]entity.ApprovalWorkflow, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ApprovalWorkflow{}).
		Where("company_id = ?", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Reason != "" {
		query = query.Where("reason = ?", params.Reason)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var workflows []entity.ApprovalWorkflow
	err := query.
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Quote").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&workflows).Error
	return workflows, total, err
}

// ListPendingForRole 查询某角色可处理的待审批流
// 只返回轮到该角色层级的流程：第1级待处理，或第1级已过、第2级待处理
func (r *ApprovalRepository) ListPendingForRole(ctx context.Context, companyID, role string) ([]entity.ApprovalWorkflow, error) {
	var workflows []entity.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Joins("JOIN ventas_approval_levels al ON al.workflow_id = ventas_approval_workflows.id").
		Where("ventas_approval_workflows.company_id = ? AND ventas_approval_workflows.status = ?", companyID, entity.ApprovalStatusPending).
		Where("al.required_role = ? AND al.status = ?", role, entity.ApprovalStatusPending).
		Where("NOT EXISTS (SELECT 1 FROM ventas_approval_levels prev WHERE prev.workflow_id = al.workflow_id AND prev.level < al.level AND prev.status <> ?)", entity.ApprovalStatusApproved).
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC") }).
		Preload("Quote").
		Order("ventas_approval_workflows.created_at ASC").
		Find(&workflows).Error
	return workflows, err
}

// UpdateLevelTx 在事务内保存审批层级
func (r *ApprovalRepository) UpdateLevelTx(tx *gorm.DB, level *entity.ApprovalLevel) error {
	return tx.Save(level).Error
}

// ResolveTx 在事务内结束审批流
func (r *ApprovalRepository) ResolveTx(tx *gorm.DB, companyID, id, status string) (int64, error) {
	now := time.Now()
	result := tx.Model(&entity.ApprovalWorkflow{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, entity.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": now,
			"updated_at":  now,
		})
	return result.RowsAffected, result.Error
}

// FindExpired 查询已过期但仍待处理的审批流（定时任务用）
func (r *ApprovalRepository) FindExpired(ctx context.Context, now time.Time) ([]entity.ApprovalWorkflow, error) {
	var workflows []entity.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", entity.ApprovalStatusPending, now).
		Find(&workflows).Error
	return workflows, err
}
