package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Client   *ClientRepository
	Quote    *QuoteRepository
	Order    *OrderRepository
	Delivery *DeliveryRepository
	Invoice  *InvoiceRepository
	Approval *ApprovalRepository
	History  *HistoryRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Client:   NewClientRepository(db),
		Quote:    NewQuoteRepository(db),
		Order:    NewOrderRepository(db),
		Delivery: NewDeliveryRepository(db),
		Invoice:  NewInvoiceRepository(db),
		Approval: NewApprovalRepository(db),
		History:  NewHistoryRepository(db),
	}
}
