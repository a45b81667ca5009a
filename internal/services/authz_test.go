package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hospital-app-server/internal/models"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		op      string
		role    models.Role
		allowed bool
	}{
		{OpAppointmentBook, models.RolePatient, true},
		{OpAppointmentBook, models.RoleStaff, true},
		{OpAppointmentBook, models.RoleDoctor, false},
		{OpAppointmentApprove, models.RoleAdmin, true},
		{OpAppointmentApprove, models.RoleStaff, false},
		{OpAppointmentReject, models.RoleAdmin, true},
		{OpAppointmentReject, models.RolePatient, false},
		{OpAppointmentCancel, models.RolePatient, true},
		{OpAppointmentCancel, models.RoleDoctor, false},
		{OpBedAllocate, models.RoleStaff, true},
		{OpBedAllocate, models.RolePatient, false},
		{OpBedDischarge, models.RoleAdmin, true},
		{OpBedDischarge, models.RoleDoctor, false},
		{OpBillingCreate, models.RoleStaff, true},
		{OpBillingCreate, models.RolePatient, false},
		{OpBillingPay, models.RoleAdmin, true},
		{OpBillingCancel, models.RoleDoctor, false},
		{OpPrescriptionCreate, models.RoleDoctor, true},
		{OpPrescriptionCreate, models.RoleAdmin, false},
	}

	for _, tc := range cases {
		err := Authorize(tc.op, tc.role)
		if tc.allowed {
			assert.NoError(t, err, "%s should allow %s", tc.op, tc.role)
		} else {
			assert.ErrorIs(t, err, ErrPermission, "%s should deny %s", tc.op, tc.role)
		}
	}
}

func TestAuthorizeUnknownOperation(t *testing.T) {
	assert.ErrorIs(t, Authorize("no.such.op", models.RoleAdmin), ErrPermission)
}
