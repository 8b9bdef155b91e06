package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// Notifier sends alerts and run summaries to an external webhook.
type Notifier interface {
	Notify(alerts []Alert) error
	NotifyRunCompleted(ctx context.Context, run models.Run, report models.QCReport) error
}

// webhookNotifier posts Slack-compatible block messages to a webhook URL.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts to the given webhook URL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify sends the given alerts to the configured webhook.
// It returns nil without making a request if the alerts slice is empty.
func (w *webhookNotifier) Notify(alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	return w.postJSON(context.Background(), w.buildAlertMessage(alerts))
}

// NotifyRunCompleted posts a summary of a finished prediction run to the
// configured webhook.
func (w *webhookNotifier) NotifyRunCompleted(ctx context.Context, run models.Run, report models.QCReport) error {
	return w.postJSON(ctx, w.buildRunMessage(run, report))
}

func (w *webhookNotifier) postJSON(ctx context.Context, msg slackMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (w *webhookNotifier) buildAlertMessage(alerts []Alert) slackMessage {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "vhip Alert Summary"},
		},
	}

	for i, alert := range alerts {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		emoji := severityEmoji(alert.Severity)
		text := fmt.Sprintf("%s *[%s]* %s\n_%s_",
			emoji,
			strings.ToUpper(string(alert.Severity)),
			alert.Message,
			alert.TriggeredAt.Format("2006-01-02 15:04 UTC"),
		)
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	return slackMessage{Blocks: blocks}
}

func (w *webhookNotifier) buildRunMessage(run models.Run, report models.QCReport) slackMessage {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "vhip Run Completed"},
		},
	}

	text := fmt.Sprintf("*%s* scored %d virus-host pairs, %d predicted to infect\nmodel %s %s, finished in %s",
		run.ID,
		run.Pairs,
		run.Positive,
		run.ModelName,
		run.ModelVersion,
		run.Duration().Round(time.Millisecond),
	)
	blocks = append(blocks, slackBlock{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: text},
	})

	if n := len(report.Findings); n > 0 {
		counts := report.CountBySeverity()
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("⚠️ %d quality-control findings (%d warnings, %d critical)",
					n, counts[models.QCWarning], counts[models.QCCritical]),
			},
		})
	}

	return slackMessage{Blocks: blocks}
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "❓"
	}
}

var _ core.RunNotifier = (Notifier)(nil)
