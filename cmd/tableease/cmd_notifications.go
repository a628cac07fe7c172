package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tableease/internal/client"
)

var markAllRead bool

var notificationsCmd = &cobra.Command{
	Use:   "notifications [id-to-mark-read]",
	Short: "Show the notification feed",
	Long: `Show the most recent notifications for the active session.

Pass a notification id to mark it read, or --all to mark everything
read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotifications,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the notification feed live",
	RunE:  runWatch,
}

func init() {
	notificationsCmd.Flags().BoolVar(&markAllRead, "all", false, "mark all notifications read")
}

func runNotifications(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	u := a.session.Current()
	if u == nil {
		return fmt.Errorf("not logged in")
	}

	store := a.withNotifications()
	store.SetIdentity(cmd.Context(), u, a.session.Token())
	if err := store.LastError(); err != nil {
		return fmt.Errorf("fetching notifications: %w", err)
	}

	view := client.NewBellView(store, os.Stdout)

	switch {
	case markAllRead:
		view.AcknowledgeAll(cmd.Context())
		store.Wait()
	case len(args) == 1:
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		view.Acknowledge(cmd.Context(), id)
		store.Wait()
	}

	view.RenderBadge()
	view.RenderList()
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	u := a.session.Current()
	if u == nil {
		return fmt.Errorf("not logged in")
	}

	store := a.withNotifications()
	store.SetIdentity(cmd.Context(), u, a.session.Token())

	view := client.NewBellView(store, os.Stdout)
	view.RenderBadge()
	fmt.Println("Watching for new notifications, Ctrl-C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	lastUnread := store.Unread()
	for {
		select {
		case <-quit:
			fmt.Println()
			view.RenderBadge()
			return nil
		case <-ticker.C:
			if unread := store.Unread(); unread != lastUnread {
				lastUnread = unread
				view.RenderBadge()
				view.RenderList()
			}
		}
	}
}
