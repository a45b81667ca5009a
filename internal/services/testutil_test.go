package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-app-server/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:hms_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

// recorderSink captures notifications synchronously for assertions.
type recordedNotification struct {
	UserID  string
	Role    models.Role
	Title   string
	Message string
}

type recorderSink struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (r *recorderSink) Notify(userID, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedNotification{UserID: userID, Title: title, Message: message})
}

func (r *recorderSink) NotifyRole(role models.Role, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedNotification{Role: role, Title: title, Message: message})
}

func (r *recorderSink) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		titles = append(titles, n.Title)
	}
	return titles
}

func (r *recorderSink) forUser(userID string) []recordedNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedNotification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPatient(t *testing.T, db *gorm.DB, email string) (*models.User, *models.Patient) {
	t.Helper()
	user := seedUser(t, db, models.RolePatient, email)
	patient := &models.Patient{UserID: user.ID}
	require.NoError(t, db.Create(patient).Error)
	return user, patient
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, fee float64) (*models.User, *models.Doctor) {
	t.Helper()
	user := seedUser(t, db, models.RoleDoctor, email)
	doctor := &models.Doctor{
		UserID:          user.ID,
		ConsultationFee: fee,
		LicenseNumber:   "LIC-" + user.ID[:8],
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(doctor).Error)
	return user, doctor
}

func seedAppointment(t *testing.T, db *gorm.DB, patient *models.Patient, doctor *models.Doctor, status models.AppointmentStatus, date time.Time, clock string) *models.Appointment {
	t.Helper()
	appointment := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          status,
		CaseType:        models.CaseTypeNew,
	}
	require.NoError(t, db.Create(appointment).Error)
	return appointment
}

func seedWardBed(t *testing.T, db *gorm.DB, pricePerDay float64) (*models.Ward, *models.Bed) {
	t.Helper()
	ward := &models.Ward{Name: "General A", WardType: models.WardTypeGeneral, Floor: 1}
	require.NoError(t, db.Create(ward).Error)
	bed := &models.Bed{
		WardID:      ward.ID,
		BedNumber:   "B-01",
		PricePerDay: pricePerDay,
		Status:      models.BedStatusAvailable,
		IsActive:    true,
	}
	require.NoError(t, db.Create(bed).Error)
	return ward, bed
}

func seedAllocation(t *testing.T, db *gorm.DB, bed *models.Bed, patient *models.Patient, admitted time.Time, status models.AllocationStatus) *models.BedAllocation {
	t.Helper()
	allocation := &models.BedAllocation{
		BedID:         bed.ID,
		PatientID:     patient.ID,
		AdmissionDate: admitted,
		Status:        status,
		PaymentStatus: models.AllocationPaymentPending,
	}
	require.NoError(t, db.Create(allocation).Error)
	if status == models.AllocationStatusActive {
		require.NoError(t, db.Model(&models.Bed{}).Where("id = ?", bed.ID).
			Update("status", models.BedStatusOccupied).Error)
	}
	return allocation
}

func day(offset int) time.Time {
	return time.Now().AddDate(0, 0, offset).Truncate(24 * time.Hour)
}

func adminActor(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: models.RoleAdmin}
}
