package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-app-server/internal/models"
)

func TestComputeFeesConsultationOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, breakdown.DoctorFee)
	assert.Equal(t, 50.0, breakdown.HospitalCharge)
	assert.Equal(t, 0.0, breakdown.BedCharge)
	assert.Equal(t, 550.0, breakdown.TotalAmount)
	assert.Equal(t, 550.0, breakdown.FinalAmount)
	assert.Equal(t, 0.0, breakdown.DiscountAmount)
}

func TestComputeFeesIncludesActiveBedCharge(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -3), models.AllocationStatusActive)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, breakdown.BedDays)
	assert.Equal(t, 1000.0, breakdown.BedChargePerDay)
	assert.Equal(t, 3000.0, breakdown.BedCharge)
	assert.Equal(t, 3550.0, breakdown.TotalAmount)
}

func TestComputeFeesBedDaysMinimumOne(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 800)
	seedAllocation(t, db, bed, patient, time.Now(), models.AllocationStatusActive)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, breakdown.BedDays)
	assert.Equal(t, 800.0, breakdown.BedCharge)
}

func TestComputeFeesUsesDischargeDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	allocation := seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -10), models.AllocationStatusDischarged)
	discharge := time.Now().AddDate(0, 0, -5)
	require.NoError(t, db.Model(&models.BedAllocation{}).Where("id = ?", allocation.ID).
		Update("discharge_date", discharge).Error)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, breakdown.BedDays)
	assert.Equal(t, 5000.0, breakdown.BedCharge)
}

func TestComputeFeesIgnoresSettledAllocations(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	allocation := seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -3), models.AllocationStatusDischarged)
	require.NoError(t, db.Model(&models.BedAllocation{}).Where("id = ?", allocation.ID).
		Update("payment_status", models.AllocationPaymentPaid).Error)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.BedCharge)
	assert.Equal(t, 0, breakdown.BedDays)
}

func TestLoyaltyDiscountForReturningPatient(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(-30), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, breakdown.DiscountPercentage)
	assert.Equal(t, 110.0, breakdown.DiscountAmount)
	assert.Equal(t, 440.0, breakdown.TotalAmount)
	assert.Equal(t, 330.0, breakdown.FinalAmount)
}

func TestLoyaltyDiscountAppliesToGrossIncludingBed(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -3), models.AllocationStatusActive)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(-30), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, breakdown.BedCharge)
	assert.Equal(t, 3550.0, breakdown.TotalAmount)
	assert.Equal(t, 887.5, breakdown.DiscountAmount)
	assert.Equal(t, 2662.5, breakdown.FinalAmount)
}

func TestLoyaltyDiscountRequiresSameDoctor(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)
	_, otherDoctor := seedDoctor(t, db, "other-doctor@test.local", 600)
	seedAppointment(t, db, patient, otherDoctor, models.AppointmentStatusVisited, day(-30), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.DiscountAmount)
}

func TestLoyaltyDiscountWindowExpires(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(-120), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.DiscountAmount)
}

func TestLoyaltyDiscountIgnoresLaterAndNonQualifyingVisits(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)

	// Later visit and a rejected earlier one never qualify.
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusApproved, day(5), "09:00")
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusRejected, day(-10), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, breakdown.DiscountAmount)
}

func TestLoyaltyDiscountSameDayEarlierTime(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "08:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	breakdown, err := svc.ComputeFees(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, breakdown.DiscountPercentage)
}

func TestCreateInvoice(t *testing.T) {
	db := newTestDB(t)
	sink := &recorderSink{}
	svc := NewBillingService(db, sink)

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	patientUser, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "walk-in")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-[A-Z0-9]{8}$`), billing.InvoiceNumber)
	assert.Equal(t, models.BillingPaymentPending, billing.PaymentStatus)
	assert.Equal(t, 550.0, billing.TotalAmount)
	assert.Equal(t, 550.0, billing.FinalAmount)

	notes := sink.forUser(patientUser.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Invoice Generated", notes[0].Title)

	// A second invoice for the same appointment conflicts.
	_, err = svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateInvoiceReconcilesCaseType(t *testing.T) {
	db := newTestDB(t)
	sink := &recorderSink{}
	svc := NewBillingService(db, sink)

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	patientUser, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 400)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(-30), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), current.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 110.0, billing.DiscountAmount)

	var reloaded models.Appointment
	require.NoError(t, db.First(&reloaded, "id = ?", current.ID).Error)
	assert.Equal(t, models.CaseTypeOld, reloaded.CaseType)

	notes := sink.forUser(patientUser.ID)
	require.Len(t, notes, 2)
	assert.Equal(t, "Loyalty Discount Applied", notes[1].Title)
}

func TestCreateInvoiceCaseTypeKeysOnEligibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	// Charity clinic doctor: eligible returning patients get a zero
	// discount amount but are still OLD cases.
	_, doctor := seedDoctor(t, db, "doctor@test.local", 0)
	seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(-30), "09:00")
	current := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), current.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 25.0, billing.DiscountPercentage)
	assert.Equal(t, 0.0, billing.DiscountAmount)

	var reloaded models.Appointment
	require.NoError(t, db.First(&reloaded, "id = ?", current.ID).Error)
	assert.Equal(t, models.CaseTypeOld, reloaded.CaseType)
}

func TestRecordPaymentSettlesInvoiceAndAllocations(t *testing.T) {
	db := newTestDB(t)
	sink := &recorderSink{}
	svc := NewBillingService(db, sink)

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	patientUser, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	allocation := seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -2), models.AllocationStatusActive)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)

	paid, err := svc.RecordPayment(adminActor(admin), billing.ID, "2,550.00", models.PaymentMethodUPI)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaymentPaid, paid.PaymentStatus)
	assert.Equal(t, 2550.0, paid.PaidAmount)
	assert.Equal(t, models.PaymentMethodUPI, paid.PaymentMethod)

	var reloaded models.BedAllocation
	require.NoError(t, db.First(&reloaded, "id = ?", allocation.ID).Error)
	assert.Equal(t, models.AllocationPaymentPaid, reloaded.PaymentStatus)

	titles := sink.titles()
	assert.Contains(t, titles, "Payment Successful")
	assert.Contains(t, titles, "Payment Received")
	require.NotEmpty(t, sink.forUser(patientUser.ID))
}

func TestRecordPaymentTolerantParsing(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)

	// Unparseable input is treated as paying the target in full.
	paid, err := svc.RecordPayment(adminActor(admin), billing.ID, "full settlement", models.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaymentPaid, paid.PaymentStatus)
	assert.Equal(t, 550.0, paid.PaidAmount)
}

func TestRecordPartialPaymentStaysPending(t *testing.T) {
	db := newTestDB(t)
	sink := &recorderSink{}
	svc := NewBillingService(db, sink)

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	allocation := seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -2), models.AllocationStatusActive)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)
	sink.sent = nil

	paid, err := svc.RecordPayment(adminActor(admin), billing.ID, "100", models.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaymentPending, paid.PaymentStatus)
	assert.Equal(t, 100.0, paid.PaidAmount)

	// Partial payments are still announced to both sides.
	titles := sink.titles()
	assert.Contains(t, titles, "Payment Successful")
	assert.Contains(t, titles, "Payment Received")

	var reloaded models.BedAllocation
	require.NoError(t, db.First(&reloaded, "id = ?", allocation.ID).Error)
	assert.Equal(t, models.AllocationPaymentPending, reloaded.PaymentStatus)
}

func TestRecordPaymentWithinTolerance(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)

	paid, err := svc.RecordPayment(adminActor(admin), billing.ID, "549.99", models.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaymentPaid, paid.PaymentStatus)
}

func TestCancelInvoiceLeavesAllocationsUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	_, bed := seedWardBed(t, db, 1000)
	allocation := seedAllocation(t, db, bed, patient, time.Now().AddDate(0, 0, -2), models.AllocationStatusActive)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)

	cancelled, err := svc.CancelInvoice(adminActor(admin), billing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPaymentCancelled, cancelled.PaymentStatus)

	var reloaded models.BedAllocation
	require.NoError(t, db.First(&reloaded, "id = ?", allocation.ID).Error)
	assert.Equal(t, models.AllocationPaymentPending, reloaded.PaymentStatus)

	// A cancelled invoice accepts no payment and no second cancel.
	_, err = svc.RecordPayment(adminActor(admin), billing.ID, "550", models.PaymentMethodCash)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.CancelInvoice(adminActor(admin), billing.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelPaidInvoiceFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	admin := seedUser(t, db, models.RoleAdmin, "admin@test.local")
	_, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	billing, err := svc.CreateInvoice(adminActor(admin), appointment.ID, "")
	require.NoError(t, err)
	_, err = svc.RecordPayment(adminActor(admin), billing.ID, "", models.PaymentMethodCash)
	require.NoError(t, err)

	_, err = svc.CancelInvoice(adminActor(admin), billing.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBillingPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewBillingService(db, &recorderSink{})

	patientUser, patient := seedPatient(t, db, "patient@test.local")
	_, doctor := seedDoctor(t, db, "doctor@test.local", 500)
	appointment := seedAppointment(t, db, patient, doctor, models.AppointmentStatusVisited, day(0), "10:30")

	actor := Actor{UserID: patientUser.ID, Role: models.RolePatient}
	_, err := svc.CreateInvoice(actor, appointment.ID, "")
	assert.ErrorIs(t, err, ErrPermission)
	_, err = svc.RecordPayment(actor, "any", "100", models.PaymentMethodCash)
	assert.ErrorIs(t, err, ErrPermission)
	_, err = svc.CancelInvoice(actor, "any")
	assert.ErrorIs(t, err, ErrPermission)
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 1234.5, parseAmount("1,234.50", 0))
	assert.Equal(t, 550.0, parseAmount("$550", 0))
	assert.Equal(t, 550.0, parseAmount("₹ 550", 0))
	assert.Equal(t, 99.0, parseAmount("", 99))
	assert.Equal(t, 99.0, parseAmount("not a number", 99))
}

func TestBillingBalance(t *testing.T) {
	b := models.Billing{TotalAmount: 440, FinalAmount: 330, PaidAmount: 100}
	assert.Equal(t, 230.0, b.Balance())

	// Without a discounted figure the gross total is the target.
	b = models.Billing{TotalAmount: 440, FinalAmount: 0, PaidAmount: 0}
	assert.Equal(t, 440.0, b.Balance())
}
