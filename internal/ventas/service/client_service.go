package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/notify"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientService 客户服务
type ClientService struct {
	repo        *repository.ClientRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
	dispatcher  *notify.Dispatcher
}

func NewClientService(repo *repository.ClientRepository, historyRepo *repository.HistoryRepository, db *gorm.DB, dispatcher *notify.Dispatcher) *ClientService {
	return &ClientService{
		repo:        repo,
		historyRepo: historyRepo,
		db:          db,
		dispatcher:  dispatcher,
	}
}

// CreateClientRequest 创建客户请求
type CreateClientRequest struct {
	Name         string  `json:"name" binding:"required"`
	TaxID        string  `json:"tax_id"`
	ContactName  string  `json:"contact_name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Address      string  `json:"address"`
	CreditLimit  float64 `json:"credit_limit"`
	PaymentTerms string  `json:"payment_terms"`
	Notes        string  `json:"notes"`
}

// CreateClient 创建客户
func (s *ClientService) CreateClient(ctx context.Context, actor lifecycle.Actor, req CreateClientRequest) (*entity.Client, error) {
	client := &entity.Client{
		ID:           uuid.New().String(),
		CompanyID:    actor.CompanyID,
		ClientCode:   genCode("CLI"),
		Name:         req.Name,
		TaxID:        req.TaxID,
		ContactName:  req.ContactName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		CreditLimit:  req.CreditLimit,
		PaymentTerms: req.PaymentTerms,
		Status:       entity.ClientStatusActive,
		Notes:        req.Notes,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return client, nil
}

// GetClient 获取客户详情
func (s *ClientService) GetClient(ctx context.Context, actor lifecycle.Actor, id string) (*entity.Client, error) {
	client, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cliente", ID: id}
		}
		return nil, err
	}
	return client, nil
}

// ListClients 客户列表
func (s *ClientService) ListClients(ctx context.Context, actor lifecycle.Actor, params repository.ClientListParams) ([]entity.Client, int64, error) {
	return s.repo.List(ctx, actor.CompanyID, params)
}

// BlockRequest 封锁/解封请求
type BlockRequest struct {
	BlockType     string  `json:"block_type"`
	Reason        string  `json:"reason" binding:"required"`
	DebtAmount    float64 `json:"debt_amount"`
	OverdueAmount float64 `json:"overdue_amount"`
}

// BlockClient 封锁客户
// 封锁标记与封锁历史同事务；封锁后报价转换/订单确认均被拒绝
func (s *ClientService) BlockClient(ctx context.Context, actor lifecycle.Actor, id string, req BlockRequest) error {
	client, err := s.GetClient(ctx, actor, id)
	if err != nil {
		return err
	}
	if client.Blocked {
		return &lifecycle.StateConflictError{Message: "cliente ya bloqueado"}
	}

	blockType := req.BlockType
	if blockType == "" {
		blockType = entity.BlockTypeManual
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Client{}).
			Where("id = ? AND company_id = ? AND blocked = false", client.ID, actor.CompanyID).
			Updates(map[string]interface{}{
				"blocked":      true,
				"block_reason": req.Reason,
				"updated_at":   time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("封锁客户失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &lifecycle.StateConflictError{Message: "cliente ya bloqueado"}
		}
		return s.repo.CreateBlockHistory(tx, &entity.ClientBlockHistory{
			CompanyID:     actor.CompanyID,
			ClientID:      client.ID,
			Blocked:       true,
			BlockType:     blockType,
			Reason:        req.Reason,
			DebtAmount:    req.DebtAmount,
			OverdueAmount: req.OverdueAmount,
			OperatorID:    actor.UserID,
		})
	})
	if err != nil {
		return err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventClientBlocked,
		CompanyID:  actor.CompanyID,
		EntityType: "client",
		EntityID:   client.ID,
		EntityCode: client.ClientCode,
		UserID:     actor.UserID,
		Payload:    map[string]interface{}{"motivo": req.Reason},
	})
	return nil
}

// UnblockClient 解封客户
func (s *ClientService) UnblockClient(ctx context.Context, actor lifecycle.Actor, id, reason string) error {
	client, err := s.GetClient(ctx, actor, id)
	if err != nil {
		return err
	}
	if !client.Blocked {
		return &lifecycle.StateConflictError{Message: "cliente no está bloqueado"}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Client{}).
			Where("id = ? AND company_id = ? AND blocked = true", client.ID, actor.CompanyID).
			Updates(map[string]interface{}{
				"blocked":      false,
				"block_reason": "",
				"updated_at":   time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("解封客户失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &lifecycle.StateConflictError{Message: "cliente no está bloqueado"}
		}
		return s.repo.CreateBlockHistory(tx, &entity.ClientBlockHistory{
			CompanyID:  actor.CompanyID,
			ClientID:   client.ID,
			Blocked:    false,
			BlockType:  entity.BlockTypeUnblock,
			Reason:     reason,
			OperatorID: actor.UserID,
		})
	})
	if err != nil {
		return err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventClientUnblocked,
		CompanyID:  actor.CompanyID,
		EntityType: "client",
		EntityID:   client.ID,
		EntityCode: client.ClientCode,
		UserID:     actor.UserID,
		Payload:    map[string]interface{}{"motivo": reason},
	})
	return nil
}

// ListBlockHistory 客户封锁历史
func (s *ClientService) ListBlockHistory(ctx context.Context, actor lifecycle.Actor, clientID string, page, pageSize int) ([]entity.ClientBlockHistory, int64, error) {
	return s.repo.ListBlockHistory(ctx, actor.CompanyID, clientID, page, pageSize)
}
