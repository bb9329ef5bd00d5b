package lifecycle

import (
	"fmt"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
)

// Validate 校验状态图合法性，纯判定、无副作用
// fromState必须由调用方在同一事务内从持久化状态读出
func Validate(docType DocumentType, from, to string) error {
	if !IsValidTransition(docType, from, to) {
		return &StateConflictError{DocType: docType, From: from, To: to}
	}
	return nil
}

// ValidateDeliveryDispatch 发货前置校验
// 首次发货（LISTA_PARA_DESPACHO → EN_TRANSITO）必须有司机和车辆；
// 配送失败后的重发沿用已持久化的司机/车辆，不强制重新确认
func ValidateDeliveryDispatch(d *entity.Delivery, driverName, vehicle string) error {
	if err := Validate(DocDelivery, d.Status, entity.DeliveryStatusInTransit); err != nil {
		return err
	}
	if d.Status == entity.DeliveryStatusFailed {
		return nil
	}
	if driverName == "" && d.DriverName == "" {
		return &ValidationError{Message: "despachar requiere driver_name"}
	}
	if vehicle == "" && d.Vehicle == "" {
		return &ValidationError{Message: "despachar requiere vehicle"}
	}
	return nil
}

// ValidateApprovalLevel 审批层级处理校验
// 层级必须待处理、低层级必须已通过、操作人必须持有层级所需角色且不得审批自己发起的流程
func ValidateApprovalLevel(wf *entity.ApprovalWorkflow, level *entity.ApprovalLevel, actor Actor) error {
	if wf.Status != entity.ApprovalStatusPending {
		return &StateConflictError{Message: fmt.Sprintf("审批流已结束（状态: %s）", wf.Status)}
	}
	if level.Status != entity.ApprovalStatusPending {
		return &StateConflictError{Message: fmt.Sprintf("该层级已处理（状态: %s）", level.Status)}
	}
	if !actor.HasRole(level.RequiredRole) {
		return &AuthorizationError{Message: fmt.Sprintf("层级%d需要角色 %s", level.Level, level.RequiredRole)}
	}
	if actor.UserID == wf.RequestedBy {
		return &AuthorizationError{Message: "发起人不能审批自己的流程"}
	}
	for i := range wf.Levels {
		prev := &wf.Levels[i]
		if prev.Level < level.Level && prev.Status != entity.ApprovalStatusApproved {
			return &StateConflictError{Message: fmt.Sprintf("层级%d尚未通过，不能处理层级%d", prev.Level, level.Level)}
		}
	}
	return nil
}
