package service

import (
	"context"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
)

// HistoryService 状态时间线查询服务
type HistoryService struct {
	repo *repository.HistoryRepository
}

func NewHistoryService(repo *repository.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// GetTimeline 查询某单据的状态变更时间线
func (s *HistoryService) GetTimeline(ctx context.Context, actor lifecycle.Actor, entityType, entityID string, page, pageSize int) ([]entity.StatusHistory, int64, error) {
	return s.repo.FindByEntity(ctx, actor.CompanyID, entityType, entityID, page, pageSize)
}
