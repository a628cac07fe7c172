package client

import (
	"context"
	"fmt"
	"io"
)

// BellView renders the notification store for a terminal. It holds no
// state of its own; every render reads the store fresh.
type BellView struct {
	store *NotificationStore
	out   io.Writer
}

func NewBellView(store *NotificationStore, out io.Writer) *BellView {
	return &BellView{store: store, out: out}
}

// RenderBadge prints the bell line: unread count or quiet marker.
func (v *BellView) RenderBadge() {
	unread := v.store.Unread()
	if unread == 0 {
		fmt.Fprintln(v.out, "notifications: none unread")
		return
	}
	fmt.Fprintf(v.out, "notifications: %d unread\n", unread)
}

// RenderList prints the notification list, newest first.
func (v *BellView) RenderList() {
	items := v.store.Notifications()
	if len(items) == 0 {
		fmt.Fprintln(v.out, "no notifications")
		return
	}
	for _, n := range items {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Fprintf(v.out, "%s [%d] %s  %s (%s)\n",
			marker, n.ID, n.Title, n.Message, n.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// Acknowledge marks one notification read.
func (v *BellView) Acknowledge(ctx context.Context, id int) {
	v.store.MarkAsRead(ctx, id)
}

// AcknowledgeAll marks every notification read.
func (v *BellView) AcknowledgeAll(ctx context.Context) {
	v.store.MarkAllAsRead(ctx)
}
