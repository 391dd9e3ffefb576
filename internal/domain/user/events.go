package user

import "time"

// RegisteredEvent is raised when a new account is stored
type RegisteredEvent struct {
	UserID       int64
	Username     string
	RegisteredAt time.Time
}

func (e RegisteredEvent) EventName() string {
	return "user.registered"
}

func (e RegisteredEvent) OccurredAt() time.Time {
	return e.RegisteredAt
}
