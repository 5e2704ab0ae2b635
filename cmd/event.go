package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/obsidianfr/intranet/internal/core/events"
	"github.com/obsidianfr/intranet/internal/notification"
	"github.com/obsidianfr/intranet/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events, monitor event bus, inspect handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus; with a configured Discord webhook the user lifecycle events reach the channel.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var eventData string

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	if cfg, err := loadConfig("."); err == nil {
		notification.NewDiscordNotifier(cfg.Notification, lg).Subscribe(eventBus)
	} else {
		lg.Warn("config not loaded, publishing without notifier", "error", err)
	}

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	ctx := context.Background()

	var err error
	switch eventType {
	case events.EventTypeUserCreated:
		err = eventBus.PublishSync(ctx, events.NewUserCreatedEvent(0, "test.user", "scientifique", "recherche", "TESTPASS"))
	case events.EventTypeUserDeleted:
		err = eventBus.PublishSync(ctx, events.NewUserDeletedEvent("test.user", "scientifique", "recherche", "cli"))
	case events.EventTypeUserPasswordReset:
		err = eventBus.PublishSync(ctx, events.NewUserPasswordResetEvent("test.user", "TESTPASS"))
	default:
		err = eventBus.PublishSync(ctx, events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		})
	}
	if err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	lg.Info("test event published successfully", "event_type", eventType)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
