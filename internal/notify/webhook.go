package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// deliver posts ev to all configured targets and reports whether at least
// one accepted it. Errors are logged, never returned.
func (n *Notifier) deliver(ctx context.Context, ev Event) bool {
	var accepted bool
	for _, wh := range n.webhooks {
		url := wh.URL()
		if url == "" {
			slog.Warn("notify: webhook url env not set, skipping", "type", wh.Type, "url_env", wh.URLEnv)
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(ctx, url, ev)
		case "teams":
			err = n.sendTeams(ctx, url, ev)
		case "http":
			err = n.sendHTTP(ctx, url, ev)
		default:
			slog.Warn("notify: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed",
				"type", wh.Type,
				"source", ev.Source,
				"err", err,
			)
		} else {
			accepted = true
			slog.Debug("notify: webhook delivered",
				"type", wh.Type,
				"source", ev.Source,
				"state", ev.State,
			)
		}
	}
	return accepted
}

func (n *Notifier) sendSlack(ctx context.Context, url string, ev Event) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* %s", stateLabel(ev.State), ev.Message),
	})
	return n.post(ctx, url, body)
}

func (n *Notifier) sendTeams(ctx context.Context, url string, ev Event) error {
	payload := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": stateColor(ev.State),
		"summary":    "Brood corridor " + ev.State,
		"title":      fmt.Sprintf("Broodwatch: %s", ev.Source),
		"text":       ev.Message,
	}
	body, _ := json.Marshal(payload)
	return n.post(ctx, url, body)
}

func (n *Notifier) sendHTTP(ctx context.Context, url string, ev Event) error {
	body, _ := json.Marshal(map[string]any{"event": ev})
	return n.post(ctx, url, body)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func stateLabel(s string) string {
	switch s {
	case StateUnhealthy:
		return "[UNHEALTHY]"
	case StateRecovered:
		return "[RECOVERED]"
	default:
		return "[HEALTHY]"
	}
}

func stateColor(s string) string {
	switch s {
	case StateUnhealthy:
		return "FF4F6A"
	case StateRecovered:
		return "00C853"
	default:
		return "00D4FF"
	}
}
