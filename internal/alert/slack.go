package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crimson-sun/airs/internal/model"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
	maxLinesPerTier   = 5
)

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// SlackOption configures a Slack notifier.
type SlackOption func(*Slack)

// WithChannel overrides the webhook's default channel.
func WithChannel(ch string) SlackOption {
	return func(s *Slack) { s.channel = ch }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) SlackOption {
	return func(s *Slack) { s.client.Timeout = d }
}

// WithMaxRetries sets how many times a 5xx response is retried. Default: 3.
func WithMaxRetries(n int) SlackOption {
	return func(s *Slack) { s.maxRetries = n }
}

// WithBackoff sets the first retry delay; later retries double it. Default: 1s.
func WithBackoff(d time.Duration) SlackOption {
	return func(s *Slack) { s.backoff = d }
}

// Slack posts alerts to a Slack incoming webhook, one attachment per
// severity tier. Retries on 5xx with exponential backoff.
type Slack struct {
	client     *http.Client
	url        string
	channel    string
	maxRetries int
	backoff    time.Duration
}

// NewSlack creates a notifier targeting the given webhook URL.
func NewSlack(url string, opts ...SlackOption) *Slack {
	s := &Slack{
		client:     &http.Client{Timeout: defaultTimeout},
		url:        url,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify posts one message summarising alerts. An empty batch sends nothing.
func (s *Slack) Notify(ctx context.Context, alerts []model.Incident) error {
	if len(alerts) == 0 {
		return nil
	}
	body, err := json.Marshal(s.message(alerts))
	if err != nil {
		return fmt.Errorf("slack: marshal: %w", err)
	}
	return s.postWithRetry(ctx, body)
}

var tierOrder = []string{"high", "medium", "low", "unknown"}

func (s *Slack) message(alerts []model.Incident) slackMessage {
	byTier := map[string][]model.Incident{}
	var other []model.Incident
	for _, a := range alerts {
		tier := strings.ToLower(a.Severity)
		switch tier {
		case "high", "medium", "low", "unknown":
			byTier[tier] = append(byTier[tier], a)
		default:
			other = append(other, a)
		}
	}

	summary := slackAttachment{
		Color:  "danger",
		Title:  fmt.Sprintf("Summary (%d alerts)", len(alerts)),
		Footer: "AIRS incident report",
	}
	for _, tier := range tierOrder {
		summary.Fields = append(summary.Fields, slackField{
			Title: strings.ToUpper(tier[:1]) + tier[1:],
			Value: fmt.Sprintf("%d", len(byTier[tier])),
			Short: true,
		})
	}

	attachments := []slackAttachment{summary}
	for _, tier := range tierOrder {
		if len(byTier[tier]) > 0 {
			attachments = append(attachments, tierAttachment(strings.ToUpper(tier), byTier[tier]))
		}
	}
	if len(other) > 0 {
		attachments = append(attachments, tierAttachment("OTHER", other))
	}

	return slackMessage{
		Channel:     s.channel,
		Username:    "AIRS",
		IconEmoji:   ":rotating_light:",
		Text:        fmt.Sprintf("🔔 *Alert triggered*\n*%d* incidents need attention", len(alerts)),
		Attachments: attachments,
	}
}

func tierAttachment(tier string, incidents []model.Incident) slackAttachment {
	var b strings.Builder
	for i, inc := range incidents {
		if i >= maxLinesPerTier {
			fmt.Fprintf(&b, "_...and %d more_", len(incidents)-maxLinesPerTier)
			break
		}
		fmt.Fprintf(&b, "• `%s` *%s* → %s\n", inc.Timestamp, inc.Source, inc.AttackType)
	}
	color := "warning"
	if tier == "HIGH" {
		color = "danger"
	}
	return slackAttachment{Color: color, Title: tier + " severity", Text: b.String()}
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (s *Slack) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("slack: %w", ctx.Err())
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("slack: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("slack: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("slack: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
