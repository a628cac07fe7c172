package push

import (
	"fmt"
	"time"
)

// NotificationEvent is the JSON payload delivered on a user's live
// channel each time a notification row is inserted for them.
type NotificationEvent struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UserChannel names the redis pub/sub channel scoped to one user's
// notification inserts.
func UserChannel(userID int) string {
	return fmt.Sprintf("notify:user:%d", userID)
}
