package notify

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// Dispatcher delivers in-app notifications asynchronously. Enqueueing
// never blocks: a full queue drops the notification. Delivery is
// at-most-once; insert failures are logged and not retried.
type Dispatcher struct {
	db    *gorm.DB
	log   zerolog.Logger
	queue chan models.Notification
	done  chan struct{}
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(db *gorm.DB, log zerolog.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		db:    db,
		log:   log,
		queue: make(chan models.Notification, queueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		if err := d.db.Create(&n).Error; err != nil {
			d.log.Error().Err(err).
				Str("user_id", n.UserID).
				Str("title", n.Title).
				Msg("notification insert failed")
		}
	}
}

// Notify queues a notification for one user.
func (d *Dispatcher) Notify(userID, title, message string) {
	select {
	case d.queue <- models.Notification{UserID: userID, Title: title, Message: message}:
	default:
		d.log.Warn().Str("user_id", userID).Str("title", title).Msg("notification queue full, dropping")
	}
}

// NotifyRole fans a notification out to every user holding the role.
func (d *Dispatcher) NotifyRole(role models.Role, title, message string) {
	var users []models.User
	if err := d.db.Select("id").Where("role = ?", role).Find(&users).Error; err != nil {
		d.log.Error().Err(err).Str("role", string(role)).Msg("notification fan-out lookup failed")
		return
	}
	for _, u := range users {
		d.Notify(u.ID, title, message)
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
