package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/core/events"
)

const (
	colorGreen  = 0x2ecc71
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields,omitempty"`
	Timestamp string       `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// DiscordNotifier posts user-lifecycle embeds to a Discord webhook.
// Delivery is best-effort: every failure is logged and dropped, a request
// never waits on it.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

func NewDiscordNotifier(cfg internal.NotificationConfig, logger *slog.Logger) *DiscordNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordNotifier{
		webhookURL: cfg.DiscordWebhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Subscribe registers the notifier for the user-lifecycle events. With no
// webhook configured it registers nothing.
func (n *DiscordNotifier) Subscribe(bus *events.EventBus) {
	if n.webhookURL == "" {
		n.logger.Info("discord webhook not configured, notifications disabled")
		return
	}
	bus.Subscribe(events.EventTypeUserCreated, n.handleUserCreated)
	bus.Subscribe(events.EventTypeUserDeleted, n.handleUserDeleted)
	bus.Subscribe(events.EventTypeUserPasswordReset, n.handlePasswordReset)
}

func (n *DiscordNotifier) handleUserCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.UserCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	n.post(ctx, embed{
		Title: "Nouveau compte créé",
		Color: colorGreen,
		Fields: []embedField{
			{Name: "Utilisateur", Value: e.Username, Inline: true},
			{Name: "Rôle", Value: e.Role, Inline: true},
			{Name: "Département", Value: orDash(e.Department), Inline: true},
			{Name: "Mot de passe temporaire", Value: "||" + e.TemporaryPassword + "||"},
		},
		Timestamp: e.OccurredAt().UTC().Format(time.RFC3339),
	})
	return nil
}

func (n *DiscordNotifier) handleUserDeleted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.UserDeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	n.post(ctx, embed{
		Title: "Compte supprimé",
		Color: colorRed,
		Fields: []embedField{
			{Name: "Utilisateur", Value: e.Username, Inline: true},
			{Name: "Rôle", Value: e.Role, Inline: true},
			{Name: "Supprimé par", Value: e.DeletedBy, Inline: true},
		},
		Timestamp: e.OccurredAt().UTC().Format(time.RFC3339),
	})
	return nil
}

func (n *DiscordNotifier) handlePasswordReset(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.UserPasswordResetEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	n.post(ctx, embed{
		Title: "Mot de passe réinitialisé",
		Color: colorOrange,
		Fields: []embedField{
			{Name: "Utilisateur", Value: e.Username, Inline: true},
			{Name: "Mot de passe temporaire", Value: "||" + e.TemporaryPassword + "||"},
		},
		Timestamp: e.OccurredAt().UTC().Format(time.RFC3339),
	})
	return nil
}

func (n *DiscordNotifier) post(ctx context.Context, em embed) {
	body, err := json.Marshal(webhookPayload{Embeds: []embed{em}})
	if err != nil {
		n.logger.Error("discord payload marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		n.logger.Error("discord request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("discord webhook delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn("discord webhook rejected", "status_code", resp.StatusCode)
		return
	}
	n.logger.Debug("discord notification delivered", "title", em.Title)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
