package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// ApprovalHandler 审批流处理器
type ApprovalHandler struct {
	svc *service.ApprovalService
}

func NewApprovalHandler(svc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

// List 审批流列表
func (h *ApprovalHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	workflows, total, err := h.svc.ListWorkflows(c.Request.Context(), actor, repository.ApprovalListParams{
		Status: c.Query("status"),
		Reason: c.Query("reason"),
		Page:   page,
		Size:   pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, workflows, page, pageSize, total)
}

// ListMyPending 当前用户可处理的待审批流
// GET /api/v1/ventas/aprobaciones/pendientes
func (h *ApprovalHandler) ListMyPending(c *gin.Context) {
	actor := middleware.MustActor(c)
	workflows, err := h.svc.ListMyPending(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": workflows})
}

// Get 审批流详情
func (h *ApprovalHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	wf, err := h.svc.GetWorkflow(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, wf)
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

// Approve 批准某一审批层级
// POST /api/v1/ventas/aprobaciones/:id/niveles/:nivel/aprobar
func (h *ApprovalHandler) Approve(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("nivel"))
	if err != nil || level < 1 {
		BadRequest(c, "nivel inválido")
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.ApproveLevel(c.Request.Context(), actor, c.Param("id"), level, req.Comment); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"approved": true, "level": level})
}

// Reject 驳回某一审批层级，整个审批流随之驳回
// POST /api/v1/ventas/aprobaciones/:id/niveles/:nivel/rechazar
func (h *ApprovalHandler) Reject(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("nivel"))
	if err != nil || level < 1 {
		BadRequest(c, "nivel inválido")
		return
	}
	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "se requiere un comentario para rechazar")
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.RejectLevel(c.Request.Context(), actor, c.Param("id"), level, req.Comment); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"rejected": true, "level": level})
}
