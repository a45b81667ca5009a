package services

import "hospital-app-server/internal/models"

// Notifier delivers in-app notifications. Delivery is best-effort and
// must never block or fail the calling operation.
type Notifier interface {
	Notify(userID, title, message string)
	NotifyRole(role models.Role, title, message string)
}

// Actor identifies who is performing a service operation.
type Actor struct {
	UserID string
	Role   models.Role
}
