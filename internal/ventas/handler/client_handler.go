package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// ClientHandler 客户处理器
type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// Create 创建客户
// POST /api/v1/ventas/clientes
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	client, err := h.svc.CreateClient(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, client)
}

// Get 客户详情
func (h *ClientHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	client, err := h.svc.GetClient(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, client)
}

// List 客户列表
func (h *ClientHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	params := repository.ClientListParams{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    pageSize,
	}
	if b := c.Query("blocked"); b == "true" {
		v := true
		params.Blocked = &v
	} else if b == "false" {
		v := false
		params.Blocked = &v
	}
	clients, total, err := h.svc.ListClients(c.Request.Context(), actor, params)
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, clients, page, pageSize, total)
}

// Block 封锁客户
// POST /api/v1/ventas/clientes/:id/bloquear
func (h *ClientHandler) Block(c *gin.Context) {
	var req service.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.BlockClient(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"blocked": true})
}

// Unblock 解封客户
// POST /api/v1/ventas/clientes/:id/desbloquear
func (h *ClientHandler) Unblock(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.UnblockClient(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"blocked": false})
}

// ListBlockHistory 封锁历史
// GET /api/v1/ventas/clientes/:id/bloqueos
func (h *ClientHandler) ListBlockHistory(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	records, total, err := h.svc.ListBlockHistory(c.Request.Context(), actor, c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, records, page, pageSize, total)
}
