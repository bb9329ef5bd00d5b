package lifecycle

import (
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
)

func TestValidateDeliveryDispatch_FirstDispatchNeedsDriverAndVehicle(t *testing.T) {
	d := &entity.Delivery{Status: entity.DeliveryStatusReady}

	err := ValidateDeliveryDispatch(d, "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	err = ValidateDeliveryDispatch(d, "Juan Pérez", "")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for missing vehicle, got %v", err)
	}

	if err := ValidateDeliveryDispatch(d, "Juan Pérez", "ABC-123"); err != nil {
		t.Fatalf("dispatch with driver and vehicle should pass: %v", err)
	}
}

func TestValidateDeliveryDispatch_PersistedDriverSuffices(t *testing.T) {
	d := &entity.Delivery{
		Status:     entity.DeliveryStatusReady,
		DriverName: "Juan Pérez",
		Vehicle:    "ABC-123",
	}
	if err := ValidateDeliveryDispatch(d, "", ""); err != nil {
		t.Fatalf("persisted driver/vehicle should satisfy dispatch: %v", err)
	}
}

func TestValidateDeliveryDispatch_RetryExemptFromDriverCheck(t *testing.T) {
	d := &entity.Delivery{
		Status:     entity.DeliveryStatusFailed,
		DriverName: "Juan Pérez",
		Vehicle:    "ABC-123",
		RetryCount: 1,
	}
	if err := ValidateDeliveryDispatch(d, "", ""); err != nil {
		t.Fatalf("retry after failure should not demand driver/vehicle: %v", err)
	}
}

func TestValidateDeliveryDispatch_InvalidState(t *testing.T) {
	d := &entity.Delivery{Status: entity.DeliveryStatusDelivered}
	err := ValidateDeliveryDispatch(d, "Juan Pérez", "ABC-123")
	var se *StateConflictError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateConflictError for delivered delivery, got %v", err)
	}
}

func twoLevelWorkflow() *entity.ApprovalWorkflow {
	wf := &entity.ApprovalWorkflow{
		ID:             "wf-1",
		Status:         entity.ApprovalStatusPending,
		RequiredLevels: 2,
		RequestedBy:    "seller-1",
		Levels: []entity.ApprovalLevel{
			{ID: "lv-1", WorkflowID: "wf-1", Level: 1, RequiredRole: entity.RoleSupervisor, Status: entity.ApprovalStatusPending},
			{ID: "lv-2", WorkflowID: "wf-1", Level: 2, RequiredRole: entity.RoleManager, Status: entity.ApprovalStatusPending},
		},
	}
	return wf
}

func TestValidateApprovalLevel_RoleRequired(t *testing.T) {
	wf := twoLevelWorkflow()
	actor := Actor{UserID: "user-1", Roles: []string{"VENDEDOR"}}

	err := ValidateApprovalLevel(wf, &wf.Levels[0], actor)
	var ae *AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthorizationError for missing role, got %v", err)
	}

	actor.Roles = []string{entity.RoleSupervisor}
	if err := ValidateApprovalLevel(wf, &wf.Levels[0], actor); err != nil {
		t.Fatalf("supervisor should handle level 1: %v", err)
	}
}

func TestValidateApprovalLevel_LevelOrdering(t *testing.T) {
	wf := twoLevelWorkflow()
	manager := Actor{UserID: "user-2", Roles: []string{entity.RoleManager}}

	err := ValidateApprovalLevel(wf, &wf.Levels[1], manager)
	var se *StateConflictError
	if !errors.As(err, &se) {
		t.Fatalf("level 2 before level 1 should conflict, got %v", err)
	}

	wf.Levels[0].Status = entity.ApprovalStatusApproved
	if err := ValidateApprovalLevel(wf, &wf.Levels[1], manager); err != nil {
		t.Fatalf("level 2 after level 1 approved should pass: %v", err)
	}
}

func TestValidateApprovalLevel_RequesterCannotApprove(t *testing.T) {
	wf := twoLevelWorkflow()
	requester := Actor{UserID: "seller-1", Roles: []string{entity.RoleSupervisor}}

	err := ValidateApprovalLevel(wf, &wf.Levels[0], requester)
	var ae *AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("requester should not approve own workflow, got %v", err)
	}
}

func TestValidateApprovalLevel_ResolvedWorkflow(t *testing.T) {
	wf := twoLevelWorkflow()
	wf.Status = entity.ApprovalStatusRejected
	actor := Actor{UserID: "user-1", Roles: []string{entity.RoleSupervisor}}

	err := ValidateApprovalLevel(wf, &wf.Levels[0], actor)
	var se *StateConflictError
	if !errors.As(err, &se) {
		t.Fatalf("resolved workflow should conflict, got %v", err)
	}
}

func TestValidateApprovalLevel_DecidedLevel(t *testing.T) {
	wf := twoLevelWorkflow()
	wf.Levels[0].Status = entity.ApprovalStatusApproved
	actor := Actor{UserID: "user-1", Roles: []string{entity.RoleSupervisor}}

	err := ValidateApprovalLevel(wf, &wf.Levels[0], actor)
	var se *StateConflictError
	if !errors.As(err, &se) {
		t.Fatalf("already decided level should conflict, got %v", err)
	}
}
