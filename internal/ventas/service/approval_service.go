package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/config"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/notify"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovalService 报价审批服务
type ApprovalService struct {
	repo        *repository.ApprovalRepository
	quoteRepo   *repository.QuoteRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
	dispatcher  *notify.Dispatcher
	cfg         config.ApprovalConfig
}

// NewApprovalService 创建审批服务
func NewApprovalService(repo *repository.ApprovalRepository, quoteRepo *repository.QuoteRepository, historyRepo *repository.HistoryRepository, db *gorm.DB, dispatcher *notify.Dispatcher, cfg config.ApprovalConfig) *ApprovalService {
	return &ApprovalService{
		repo:        repo,
		quoteRepo:   quoteRepo,
		historyRepo: historyRepo,
		db:          db,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

// ApprovalDecision 审批判定结果
type ApprovalDecision struct {
	Required       bool    `json:"required"`
	Reason         string  `json:"reason,omitempty"`
	CurrentMargin  float64 `json:"current_margin"`
	MinimumMargin  float64 `json:"minimum_margin"`
	TotalAmount    float64 `json:"total_amount"`
	RequiredLevels int     `json:"required_levels"`
}

// EvaluateQuote 判定报价单是否需要审批（纯计算，无副作用）
// 平均毛利率 = avg((price-cost)/price*100)，只对cost>0的行采样；
// 没有任何行带成本时按0处理，几乎必然触发MARGEN_BAJO（维持原系统行为，见DESIGN.md）
// 判定优先级：毛利率低于下限 > 金额超高 > 金额偏高
func (s *ApprovalService) EvaluateQuote(items []entity.QuoteItem, total float64) ApprovalDecision {
	var sum decimal.Decimal
	var samples int64
	hundred := decimal.NewFromInt(100)
	for _, item := range items {
		if item.UnitCost <= 0 || item.UnitPrice <= 0 {
			continue
		}
		price := decimal.NewFromFloat(item.UnitPrice)
		cost := decimal.NewFromFloat(item.UnitCost)
		margin := price.Sub(cost).Div(price).Mul(hundred)
		sum = sum.Add(margin)
		samples++
	}

	avgMargin := decimal.Zero
	if samples > 0 {
		avgMargin = sum.Div(decimal.NewFromInt(samples))
	}

	decision := ApprovalDecision{
		CurrentMargin: avgMargin.Round(2).InexactFloat64(),
		MinimumMargin: s.cfg.MinimumMargin,
		TotalAmount:   total,
	}

	totalDec := decimal.NewFromFloat(total)
	minMargin := decimal.NewFromFloat(s.cfg.MinimumMargin)
	highAmount := decimal.NewFromFloat(s.cfg.HighAmount)
	veryHighAmount := decimal.NewFromFloat(s.cfg.VeryHighAmount)

	switch {
	case avgMargin.LessThan(minMargin):
		decision.Required = true
		decision.Reason = entity.ApprovalReasonLowMargin
		decision.RequiredLevels = 1
		if totalDec.GreaterThan(highAmount) {
			decision.RequiredLevels = 2
		}
	case totalDec.GreaterThan(veryHighAmount):
		decision.Required = true
		decision.Reason = entity.ApprovalReasonHighAmount
		decision.RequiredLevels = 2
	case totalDec.GreaterThan(highAmount):
		decision.Required = true
		decision.Reason = entity.ApprovalReasonHighAmount
		decision.RequiredLevels = 1
	}

	return decision
}

// RequestApprovalResult 审批申请结果
type RequestApprovalResult struct {
	Decision ApprovalDecision         `json:"decision"`
	Workflow *entity.ApprovalWorkflow `json:"workflow,omitempty"`
}

// RequestApproval 为报价单发起审批
// 低于阈值时报价单直接BORRADOR→APROBADA；需要审批时创建审批流+层级，
// 报价单BORRADOR→PENDIENTE_APROBACION，三者同事务
func (s *ApprovalService) RequestApproval(ctx context.Context, actor lifecycle.Actor, quoteID string) (*RequestApprovalResult, error) {
	quote, err := s.quoteRepo.GetByID(ctx, actor.CompanyID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cotización", ID: quoteID}
		}
		return nil, err
	}

	decision := s.EvaluateQuote(quote.Items, quote.TotalAmount)
	result := &RequestApprovalResult{Decision: decision}

	if !decision.Required {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := lifecycle.Validate(lifecycle.DocQuote, quote.Status, entity.QuoteStatusApproved); err != nil {
				return err
			}
			rows, err := s.quoteRepo.TransitionStatus(tx, actor.CompanyID, quote.ID, quote.Status, entity.QuoteStatusApproved)
			if err != nil {
				return fmt.Errorf("更新报价单状态失败: %w", err)
			}
			if rows == 0 {
				return &lifecycle.StateConflictError{Message: "报价单状态已变更，请刷新后重试"}
			}
			return recordTransition(tx, s.historyRepo, actor, lifecycle.DocQuote,
				quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusApproved, "dentro de umbrales, sin aprobación requerida")
		})
		if err != nil {
			return nil, err
		}
		s.dispatcher.Enqueue(notify.Event{
			Type:       notify.EventQuoteApproved,
			CompanyID:  actor.CompanyID,
			EntityType: string(lifecycle.DocQuote),
			EntityID:   quote.ID,
			EntityCode: quote.QuoteCode,
			UserID:     actor.UserID,
		})
		return result, nil
	}

	now := time.Now()
	workflow := &entity.ApprovalWorkflow{
		ID:             uuid.New().String(),
		CompanyID:      actor.CompanyID,
		QuoteID:        quote.ID,
		Reason:         decision.Reason,
		CurrentMargin:  decision.CurrentMargin,
		MinimumMargin:  decision.MinimumMargin,
		TotalAmount:    quote.TotalAmount,
		RequiredLevels: decision.RequiredLevels,
		Status:         entity.ApprovalStatusPending,
		RequestedBy:    actor.UserID,
		ExpiresAt:      now.AddDate(0, 0, s.expiryDays()),
	}
	roles := []string{entity.RoleSupervisor, entity.RoleManager}
	for i := 0; i < decision.RequiredLevels; i++ {
		workflow.Levels = append(workflow.Levels, entity.ApprovalLevel{
			ID:           uuid.New().String(),
			WorkflowID:   workflow.ID,
			Level:        i + 1,
			RequiredRole: roles[i],
			Status:       entity.ApprovalStatusPending,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lifecycle.Validate(lifecycle.DocQuote, quote.Status, entity.QuoteStatusPendingApproval); err != nil {
			return err
		}
		rows, err := s.quoteRepo.TransitionStatus(tx, actor.CompanyID, quote.ID, quote.Status, entity.QuoteStatusPendingApproval)
		if err != nil {
			return fmt.Errorf("更新报价单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "报价单状态已变更，请刷新后重试"}
		}
		if err := s.repo.CreateTx(tx, workflow); err != nil {
			return fmt.Errorf("创建审批流失败: %w", err)
		}
		return recordTransition(tx, s.historyRepo, actor, lifecycle.DocQuote,
			quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusPendingApproval, decision.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventApprovalRequested,
		CompanyID:  actor.CompanyID,
		EntityType: string(lifecycle.DocQuote),
		EntityID:   quote.ID,
		EntityCode: quote.QuoteCode,
		UserID:     actor.UserID,
		Payload: map[string]interface{}{
			"motivo":  decision.Reason,
			"niveles": decision.RequiredLevels,
		},
	})

	result.Workflow = workflow
	return result, nil
}

// ApproveLevel 审批通过某一层级
// 层级必须按序处理、角色匹配、不得审批自己发起的流程；
// 最后一级通过时审批流APROBADO，报价单→APROBADA，同事务落库
func (s *ApprovalService) ApproveLevel(ctx context.Context, actor lifecycle.Actor, workflowID string, levelNum int, comment string) error {
	var quoteApproved *entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wf, err := s.repo.GetByIDTx(tx, actor.CompanyID, workflowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "aprobación", ID: workflowID}
			}
			return err
		}
		if time.Now().After(wf.ExpiresAt) {
			return &lifecycle.StateConflictError{Message: "审批流已过期"}
		}

		level := findLevel(wf, levelNum)
		if level == nil {
			return &lifecycle.NotFoundError{Entity: "nivel de aprobación", ID: fmt.Sprintf("%s/%d", workflowID, levelNum)}
		}
		if err := lifecycle.ValidateApprovalLevel(wf, level, actor); err != nil {
			return err
		}

		now := time.Now()
		level.Status = entity.ApprovalStatusApproved
		level.ApprovedBy = actor.UserID
		level.Comment = comment
		level.DecidedAt = &now
		if err := s.repo.UpdateLevelTx(tx, level); err != nil {
			return fmt.Errorf("更新审批层级失败: %w", err)
		}

		// 还有未通过的层级时流程继续等待
		for i := range wf.Levels {
			if wf.Levels[i].Status != entity.ApprovalStatusApproved {
				return nil
			}
		}

		// 所有层级已通过，结束审批流并放行报价单
		rows, err := s.repo.ResolveTx(tx, actor.CompanyID, wf.ID, entity.ApprovalStatusApproved)
		if err != nil {
			return fmt.Errorf("更新审批流状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "审批流状态已变更，请刷新后重试"}
		}

		quote, err := s.quoteRepo.GetByIDTx(tx, actor.CompanyID, wf.QuoteID)
		if err != nil {
			return fmt.Errorf("报价单不存在: %w", err)
		}
		if err := lifecycle.Validate(lifecycle.DocQuote, quote.Status, entity.QuoteStatusApproved); err != nil {
			return err
		}
		rows, err = s.quoteRepo.TransitionStatus(tx, actor.CompanyID, quote.ID, quote.Status, entity.QuoteStatusApproved)
		if err != nil {
			return fmt.Errorf("更新报价单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "报价单状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocQuote,
			quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusApproved, "aprobación completada"); err != nil {
			return err
		}
		quoteApproved = quote
		return nil
	})
	if err != nil {
		return err
	}

	if quoteApproved != nil {
		s.dispatcher.Enqueue(notify.Event{
			Type:       notify.EventQuoteApproved,
			CompanyID:  actor.CompanyID,
			EntityType: string(lifecycle.DocQuote),
			EntityID:   quoteApproved.ID,
			EntityCode: quoteApproved.QuoteCode,
			UserID:     actor.UserID,
		})
	}
	return nil
}

// RejectLevel 驳回某一层级，任一层级驳回即整体驳回，报价单→RECHAZADA
func (s *ApprovalService) RejectLevel(ctx context.Context, actor lifecycle.Actor, workflowID string, levelNum int, comment string) error {
	var quoteRejected *entity.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wf, err := s.repo.GetByIDTx(tx, actor.CompanyID, workflowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "aprobación", ID: workflowID}
			}
			return err
		}
		if time.Now().After(wf.ExpiresAt) {
			return &lifecycle.StateConflictError{Message: "审批流已过期"}
		}

		level := findLevel(wf, levelNum)
		if level == nil {
			return &lifecycle.NotFoundError{Entity: "nivel de aprobación", ID: fmt.Sprintf("%s/%d", workflowID, levelNum)}
		}
		if err := lifecycle.ValidateApprovalLevel(wf, level, actor); err != nil {
			return err
		}

		now := time.Now()
		level.Status = entity.ApprovalStatusRejected
		level.ApprovedBy = actor.UserID
		level.Comment = comment
		level.DecidedAt = &now
		if err := s.repo.UpdateLevelTx(tx, level); err != nil {
			return fmt.Errorf("更新审批层级失败: %w", err)
		}

		rows, err := s.repo.ResolveTx(tx, actor.CompanyID, wf.ID, entity.ApprovalStatusRejected)
		if err != nil {
			return fmt.Errorf("更新审批流状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "审批流状态已变更，请刷新后重试"}
		}

		quote, err := s.quoteRepo.GetByIDTx(tx, actor.CompanyID, wf.QuoteID)
		if err != nil {
			return fmt.Errorf("报价单不存在: %w", err)
		}
		if err := lifecycle.Validate(lifecycle.DocQuote, quote.Status, entity.QuoteStatusRejected); err != nil {
			return err
		}
		rows, err = s.quoteRepo.TransitionStatus(tx, actor.CompanyID, quote.ID, quote.Status, entity.QuoteStatusRejected)
		if err != nil {
			return fmt.Errorf("更新报价单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "报价单状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocQuote,
			quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusRejected, comment); err != nil {
			return err
		}
		quoteRejected = quote
		return nil
	})
	if err != nil {
		return err
	}

	if quoteRejected != nil {
		s.dispatcher.Enqueue(notify.Event{
			Type:       notify.EventQuoteRejected,
			CompanyID:  actor.CompanyID,
			EntityType: string(lifecycle.DocQuote),
			EntityID:   quoteRejected.ID,
			EntityCode: quoteRejected.QuoteCode,
			UserID:     actor.UserID,
			Payload:    map[string]interface{}{"motivo": comment},
		})
	}
	return nil
}

// ExpireWorkflows 过期清扫：超过时限仍待处理的审批流置EXPIRADO，报价单退回BORRADOR
// 由定时任务触发，返回处理数量
func (s *ApprovalService) ExpireWorkflows(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		wf := &expired[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rows, err := s.repo.ResolveTx(tx, wf.CompanyID, wf.ID, entity.ApprovalStatusExpired)
			if err != nil {
				return err
			}
			if rows == 0 {
				// 已被并发处理
				return nil
			}
			quote, err := s.quoteRepo.GetByIDTx(tx, wf.CompanyID, wf.QuoteID)
			if err != nil {
				return err
			}
			if quote.Status != entity.QuoteStatusPendingApproval {
				return nil
			}
			rows, err = s.quoteRepo.TransitionStatus(tx, wf.CompanyID, quote.ID, quote.Status, entity.QuoteStatusDraft)
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}
			sysActor := lifecycle.Actor{UserID: "system", CompanyID: wf.CompanyID}
			return recordTransition(tx, s.historyRepo, sysActor, lifecycle.DocQuote,
				quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusDraft, "aprobación expirada")
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// GetWorkflow 获取审批流详情
func (s *ApprovalService) GetWorkflow(ctx context.Context, actor lifecycle.Actor, id string) (*entity.ApprovalWorkflow, error) {
	wf, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "aprobación", ID: id}
		}
		return nil, err
	}
	return wf, nil
}

// ListWorkflows 审批流列表
func (s *ApprovalService) ListWorkflows(ctx context.Context, actor lifecycle.Actor, params repository.ApprovalListParams) ([]entity.ApprovalWorkflow, int64, error) {
	return s.repo.List(ctx, actor.CompanyID, params)
}

// ListMyPending 按操作人角色返回轮到其处理的待审批流
func (s *ApprovalService) ListMyPending(ctx context.Context, actor lifecycle.Actor) ([]entity.ApprovalWorkflow, error) {
	var result []entity.ApprovalWorkflow
	seen := make(map[string]bool)
	for _, role := range []string{entity.RoleSupervisor, entity.RoleManager} {
		if !actor.HasRole(role) {
			continue
		}
		workflows, err := s.repo.ListPendingForRole(ctx, actor.CompanyID, role)
		if err != nil {
			return nil, err
		}
		for _, wf := range workflows {
			// 发起人不能审批自己的流程，列表里也不给看到
			if wf.RequestedBy == actor.UserID || seen[wf.ID] {
				continue
			}
			seen[wf.ID] = true
			result = append(result, wf)
		}
	}
	if result == nil {
		result = []entity.ApprovalWorkflow{}
	}
	return result, nil
}

func (s *ApprovalService) expiryDays() int {
	if s.cfg.ExpiryDays <= 0 {
		return 7
	}
	return s.cfg.ExpiryDays
}

func findLevel(wf *entity.ApprovalWorkflow, levelNum int) *entity.ApprovalLevel {
	for i := range wf.Levels {
		if wf.Levels[i].Level == levelNum {
			return &wf.Levels[i]
		}
	}
	return nil
}
