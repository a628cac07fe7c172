package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tableease/internal/client"
	"tableease/internal/config"
	"tableease/internal/push"
	internalredis "tableease/internal/redis"
	"tableease/pkg/logger"
)

// app bundles the client-side stores the commands operate on.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	cache    *client.Cache
	api      *client.APIClient
	session  *client.SessionStore
	notifs   *client.NotificationStore
	teardown []func()
}

var rootCmd = &cobra.Command{
	Use:   "tableease",
	Short: "TableEase terminal client",
	Long: `Terminal client for the TableEase platform.

Manages the local session (login, register, profile) and follows the
logged-in user's notification feed, live.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp wires the client stores from config. Callers must defer
// a.close().
func newApp() (*app, error) {
	cfg := config.Load()
	log := logger.NewLogger()

	cache, err := client.OpenCache(cfg.Client.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening session cache: %w", err)
	}

	timeout := time.Duration(cfg.Client.RequestTimeout) * time.Second
	api := client.NewAPIClient(cfg.Client.APIBaseURL, timeout, log)

	session := client.NewSessionStore(api, cache, log)
	if err := session.Initialize(); err != nil {
		cache.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		api:     api,
		session: session,
	}
	a.teardown = append(a.teardown, func() { cache.Close() })
	a.teardown = append(a.teardown, func() { _ = log.Sync() })
	return a, nil
}

// withNotifications attaches a notification store backed by the live
// redis channel. Only the commands that read the feed pay for the
// redis connection.
func (a *app) withNotifications() *client.NotificationStore {
	if a.notifs != nil {
		return a.notifs
	}

	rdb := internalredis.NewClient(a.cfg.Redis)
	sub := push.NewSubscriber(rdb, a.log)

	a.notifs = client.NewNotificationStore(a.api, sub, a.log).
		WithRetryPolicy(a.cfg.Client.FetchRetries, 250*time.Millisecond)
	a.teardown = append(a.teardown, func() {
		a.notifs.Close()
		rdb.Close()
	})
	return a.notifs
}

func (a *app) close() {
	for i := len(a.teardown) - 1; i >= 0; i-- {
		a.teardown[i]()
	}
}
