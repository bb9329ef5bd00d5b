package lifecycle

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError 迁移前置条件不满足（缺少司机/车辆等），对应400
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StateConflictError 状态图违例或fromState与持久化状态不一致，对应422
// 调用方应重新读取当前状态后决定是否重试
type StateConflictError struct {
	DocType DocumentType
	From    string
	To      string
	Message string
}

func (e *StateConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("迁移不合法: %s %s → %s", e.DocType, e.From, e.To)
}

// AuthorizationError 操作人缺少所需角色/权限，对应403
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError 单据不存在或不属于当前租户，对应404
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s不存在: %s", e.Entity, e.ID)
}

// HTTPStatus 错误类型到HTTP状态码的映射，其余错误按500处理
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		se *StateConflictError
		ae *AuthorizationError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ae):
		return http.StatusForbidden
	case errors.As(err, &ne):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
