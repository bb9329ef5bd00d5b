package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/config"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/notify"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"gorm.io/gorm"
)

// Services 业务服务集合
type Services struct {
	Client   *ClientService
	Quote    *QuoteService
	Order    *OrderService
	Delivery *DeliveryService
	Payment  *PaymentService
	Approval *ApprovalService
	History  *HistoryService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, dispatcher *notify.Dispatcher, cfg *config.Config) *Services {
	return &Services{
		Client:   NewClientService(repos.Client, repos.History, db, dispatcher),
		Quote:    NewQuoteService(repos.Quote, repos.Order, repos.Client, repos.History, db, dispatcher),
		Order:    NewOrderService(repos.Order, repos.Client, repos.History, db),
		Delivery: NewDeliveryService(repos.Delivery, repos.Order, repos.History, db, dispatcher),
		Payment:  NewPaymentService(repos.Invoice, repos.Order, repos.History, db, dispatcher),
		Approval: NewApprovalService(repos.Approval, repos.Quote, repos.History, db, dispatcher, cfg.Approval),
		History:  NewHistoryService(repos.History),
	}
}

// genCode 生成单据编号，如 COT-202609010042
func genCode(prefix string) string {
	return fmt.Sprintf("%s-%s%04d", prefix, time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}

// recordTransition 在事务内写状态迁移审计记录
// 审计写失败时错误向上传播，迁移整体回滚
func recordTransition(tx *gorm.DB, historyRepo *repository.HistoryRepository, actor lifecycle.Actor, docType lifecycle.DocumentType, entityID, entityCode, from, to, reason string) error {
	return historyRepo.Record(tx, &entity.StatusHistory{
		CompanyID:  actor.CompanyID,
		EntityType: string(docType),
		EntityID:   entityID,
		EntityCode: entityCode,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		UserID:     actor.UserID,
	})
}
