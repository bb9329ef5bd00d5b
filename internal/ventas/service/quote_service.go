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

// QuoteService 报价单服务
type QuoteService struct {
	repo        *repository.QuoteRepository
	orderRepo   *repository.OrderRepository
	clientRepo  *repository.ClientRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
	dispatcher  *notify.Dispatcher
}

func NewQuoteService(repo *repository.QuoteRepository, orderRepo *repository.OrderRepository, clientRepo *repository.ClientRepository, historyRepo *repository.HistoryRepository, db *gorm.DB, dispatcher *notify.Dispatcher) *QuoteService {
	return &QuoteService{
		repo:        repo,
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		db:          db,
		dispatcher:  dispatcher,
	}
}

// CreateQuoteRequest 创建报价单请求
type CreateQuoteRequest struct {
	ClientID   string            `json:"client_id" binding:"required"`
	SellerID   string            `json:"seller_id"`
	Currency   string            `json:"currency"`
	ValidUntil *time.Time        `json:"valid_until"`
	Notes      string            `json:"notes"`
	Items      []CreateQuoteItem `json:"items" binding:"required,min=1"`
}

// CreateQuoteItem 报价单明细请求
type CreateQuoteItem struct {
	ProductID   string  `json:"product_id" binding:"required"`
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gt=0"`
	UnitCost    float64 `json:"unit_cost"`
}

// CreateQuote 创建报价单（BORRADOR）
func (s *QuoteService) CreateQuote(ctx context.Context, actor lifecycle.Actor, req CreateQuoteRequest) (*entity.Quote, error) {
	client, err := s.clientRepo.GetByID(ctx, actor.CompanyID, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cliente", ID: req.ClientID}
		}
		return nil, err
	}
	if client.Blocked {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("cliente bloqueado: %s", client.BlockReason)}
	}

	sellerID := req.SellerID
	if sellerID == "" {
		sellerID = actor.UserID
	}
	currency := req.Currency
	if currency == "" {
		currency = "ARS"
	}

	quote := &entity.Quote{
		ID:         uuid.New().String(),
		CompanyID:  actor.CompanyID,
		QuoteCode:  genCode("COT"),
		ClientID:   req.ClientID,
		SellerID:   sellerID,
		Status:     entity.QuoteStatusDraft,
		Currency:   currency,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		CreatedBy:  actor.UserID,
	}

	var total float64
	for _, item := range req.Items {
		amount := item.Quantity * item.UnitPrice
		total += amount
		quote.Items = append(quote.Items, entity.QuoteItem{
			ID:          uuid.New().String(),
			QuoteID:     quote.ID,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			UnitCost:    item.UnitCost,
			Amount:      amount,
		})
	}
	quote.TotalAmount = total

	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("创建报价单失败: %w", err)
	}
	return quote, nil
}

// GetQuote 获取报价单详情
func (s *QuoteService) GetQuote(ctx context.Context, actor lifecycle.Actor, id string) (*entity.Quote, error) {
	quote, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cotización", ID: id}
		}
		return nil, err
	}
	return quote, nil
}

// ListQuotes 报价单列表
func (s *QuoteService) ListQuotes(ctx context.Context, actor lifecycle.Actor, params repository.QuoteListParams) ([]entity.Quote, int64, error) {
	return s.repo.List(ctx, actor.CompanyID, params)
}

// ConvertRequest 报价单转订单请求
type ConvertRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// ConvertToOrder 已批准的报价单转销售订单
// 报价单APROBADA→CONVERTIDA与订单创建同事务；封锁客户拒绝转换
func (s *QuoteService) ConvertToOrder(ctx context.Context, actor lifecycle.Actor, quoteID string, req ConvertRequest) (*entity.SalesOrder, error) {
	quote, err := s.repo.GetByID(ctx, actor.CompanyID, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cotización", ID: quoteID}
		}
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, actor.CompanyID, quote.ClientID)
	if err != nil {
		return nil, fmt.Errorf("cliente no encontrado: %w", err)
	}
	if client.Blocked {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("cliente bloqueado: %s", client.BlockReason)}
	}

	now := time.Now()
	order := &entity.SalesOrder{
		ID:              uuid.New().String(),
		CompanyID:       actor.CompanyID,
		OrderCode:       genCode("PED"),
		QuoteID:         &quote.ID,
		ClientID:        quote.ClientID,
		SellerID:        quote.SellerID,
		Status:          entity.SOStatusPending,
		TotalAmount:     quote.TotalAmount,
		Currency:        quote.Currency,
		OrderDate:       &now,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedBy:       actor.UserID,
	}
	for _, item := range quote.Items {
		order.Items = append(order.Items, entity.SOItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lifecycle.Validate(lifecycle.DocQuote, quote.Status, entity.QuoteStatusConverted); err != nil {
			return err
		}
		rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, quote.ID, quote.Status, entity.QuoteStatusConverted)
		if err != nil {
			return fmt.Errorf("更新报价单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "报价单状态已变更，请刷新后重试"}
		}
		if err := s.orderRepo.CreateTx(tx, order); err != nil {
			return fmt.Errorf("创建销售订单失败: %w", err)
		}
		return recordTransition(tx, s.historyRepo, actor, lifecycle.DocQuote,
			quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusConverted, "convertida a pedido "+order.OrderCode)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ExpireStale 有效期清扫：valid_until已过的报价单置VENCIDA（定时任务触发）
func (s *QuoteService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.repo.FindStale(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range stale {
		quote := &stale[i]
		if !lifecycle.IsValidTransition(lifecycle.DocQuote, quote.Status, entity.QuoteStatusExpired) {
			continue
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rows, err := s.repo.TransitionStatus(tx, quote.CompanyID, quote.ID, quote.Status, entity.QuoteStatusExpired)
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}
			sysActor := lifecycle.Actor{UserID: "system", CompanyID: quote.CompanyID}
			return recordTransition(tx, s.historyRepo, sysActor, lifecycle.DocQuote,
				quote.ID, quote.QuoteCode, quote.Status, entity.QuoteStatusExpired, "vigencia vencida")
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
