package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// HistoryHandler 状态迁移历史处理器
type HistoryHandler struct {
	svc *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// Timeline 按单据查询状态迁移历史（时间倒序）
// GET /api/v1/ventas/historial/:entidad/:id
func (h *HistoryHandler) Timeline(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	records, total, err := h.svc.GetTimeline(c.Request.Context(), actor, c.Param("entidad"), c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, records, page, pageSize, total)
}
