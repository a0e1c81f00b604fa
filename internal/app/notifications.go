package app

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading is the single sticky "loading" toast.
	NotificationLoading
)

// LoadingNotificationID identifies the sticky loading toast.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

var notificationNames = [...]string{
	NotificationSuccess: "success",
	NotificationError:   "error",
	NotificationWarning: "warning",
	NotificationInfo:    "info",
	NotificationLoading: "loading",
}

func (n NotificationType) String() string {
	if n < 0 || int(n) >= len(notificationNames) {
		return "unknown"
	}
	return notificationNames[n]
}

// Notification is one toast. A zero Duration never expires.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

func (n Notification) expiredAt(now time.Time) bool {
	return n.Duration > 0 && now.Sub(n.CreatedAt) > n.Duration
}

// IsExpired reports whether the toast has outlived its duration.
func (n Notification) IsExpired() bool {
	return n.expiredAt(time.Now())
}

// toastQueue holds at most maxNotifications toasts, oldest first.
// Callers hold State.mu.
type toastQueue []Notification

func (q *toastQueue) push(n Notification) {
	*q = append(*q, n)
	if over := len(*q) - maxNotifications; over > 0 {
		*q = slices.Delete(*q, 0, over)
	}
}

func (q *toastQueue) remove(id string) {
	*q = slices.DeleteFunc(*q, func(n Notification) bool { return n.ID == id })
}

func (q toastQueue) live(now time.Time) []Notification {
	out := make([]Notification, 0, len(q))
	for _, n := range q {
		if !n.expiredAt(now) {
			out = append(out, n)
		}
	}
	return out
}

// AddNotification queues a toast and returns its ID.
func (s *State) AddNotification(typ NotificationType, message string, d time.Duration) string {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  d,
	}
	s.mu.Lock()
	s.toasts.push(n)
	s.mu.Unlock()
	return n.ID
}

// RemoveNotification drops the toast with the given ID, if any.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	s.toasts.remove(id)
	s.mu.Unlock()
}

// ClearExpiredNotifications drops every expired toast.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	s.toasts = s.toasts.live(time.Now())
	s.mu.Unlock()
}

// GetNotifications returns the unexpired toasts, oldest first.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toasts.live(time.Now())
}

// SetLoadingNotification shows message in the sticky loading toast.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.IndexFunc(s.toasts, func(n Notification) bool {
		return n.ID == LoadingNotificationID
	}); i >= 0 {
		s.toasts[i].Message = message
		return
	}
	s.toasts.push(Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading toast.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
