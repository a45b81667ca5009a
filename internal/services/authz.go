package services

import (
	"fmt"

	"hospital-app-server/internal/models"
)

// Operation names for the capability table.
const (
	OpAppointmentBook    = "appointment.book"
	OpAppointmentApprove = "appointment.approve"
	OpAppointmentReject  = "appointment.reject"
	OpAppointmentCancel  = "appointment.cancel"

	OpBedAllocate       = "bed.allocate"
	OpBedDischarge      = "bed.discharge"
	OpBedManage         = "bed.manage"
	OpBedRequestResolve = "bed.request.resolve"

	OpBillingCreate = "billing.create"
	OpBillingPay    = "billing.pay"
	OpBillingCancel = "billing.cancel"

	OpPrescriptionCreate = "prescription.create"
)

// capabilities maps each guarded operation to the roles allowed to
// perform it. Every state-mutating service call checks here first;
// route-level role middleware is only the outer gate.
var capabilities = map[string][]models.Role{
	OpAppointmentBook:    {models.RolePatient, models.RoleAdmin, models.RoleStaff},
	OpAppointmentApprove: {models.RoleAdmin},
	OpAppointmentReject:  {models.RoleAdmin},
	OpAppointmentCancel:  {models.RolePatient, models.RoleAdmin},

	OpBedAllocate:       {models.RoleAdmin, models.RoleStaff},
	OpBedDischarge:      {models.RoleAdmin, models.RoleStaff},
	OpBedManage:         {models.RoleAdmin, models.RoleStaff},
	OpBedRequestResolve: {models.RoleAdmin, models.RoleStaff},

	OpBillingCreate: {models.RoleAdmin, models.RoleStaff},
	OpBillingPay:    {models.RoleAdmin, models.RoleStaff},
	OpBillingCancel: {models.RoleAdmin, models.RoleStaff},

	OpPrescriptionCreate: {models.RoleDoctor},
}

// Authorize returns ErrPermission unless the role may perform op.
func Authorize(op string, role models.Role) error {
	allowed, ok := capabilities[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %s", ErrPermission, op)
	}
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s cannot perform %s", ErrPermission, role, op)
}
