// Package notify tells back-office channels about confirmed credits.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/wizard"
)

// Notifier is told about every confirmed credit. A failure never undoes the
// confirmation.
type Notifier interface {
	CreditConfirmed(ctx context.Context, r wizard.Receipt) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) CreditConfirmed(context.Context, wizard.Receipt) error { return nil }

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	channel    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSlack returns a Slack notifier. channel overrides the webhook's default
// channel when set.
func NewSlack(webhookURL, channel string, logger *zap.Logger) *Slack {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slack{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// New picks Slack when a webhook is configured, Nop otherwise.
func New(webhookURL, channel string, logger *zap.Logger) Notifier {
	if webhookURL == "" {
		return Nop{}
	}
	return NewSlack(webhookURL, channel, logger)
}

func (s *Slack) CreditConfirmed(ctx context.Context, r wizard.Receipt) error {
	msg := Message(r)
	msg.Channel = s.channel

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.httpClient, msg); err != nil {
		s.logger.Warn("slack notification failed", zap.String("receipt_id", r.ID), zap.Error(err))
		return fmt.Errorf("posting to slack: %w", err)
	}
	s.logger.Info("slack notification sent", zap.String("receipt_id", r.ID))
	return nil
}

// Message builds the webhook payload for a receipt.
func Message(r wizard.Receipt) *slack.WebhookMessage {
	q := r.Quote
	summary := fmt.Sprintf("Credit confirmed for %s: %s financed, %d × %s %s",
		r.Client.FullName(),
		wizard.FormatAmount(q.BalanceToFinance),
		q.Periods,
		wizard.FormatAmount(q.PerPeriodPayment),
		strings.ToLower(string(q.Frequency)),
	)

	var items []string
	for _, it := range r.Items {
		items = append(items, fmt.Sprintf("• %d × %s", it.Quantity, it.Article.Name))
	}

	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "Credit confirmed", false, false))
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, "*"+r.Client.FullName()+"* ("+string(r.Client.RiskTier)+")\n"+strings.Join(items, "\n"), false, false),
		[]*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*Financed*\n"+wizard.FormatAmount(q.TotalFinancedGross), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Down payment*\n"+wizard.FormatAmount(q.DownPayment), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*Balance*\n"+wizard.FormatAmount(q.BalanceToFinance), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Installments*\n%d × %s", q.Periods, wizard.FormatAmount(q.PerPeriodPayment)), false, false),
		},
		nil,
	)
	footer := slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, "Receipt `"+r.ID+"`", false, false))

	return &slack.WebhookMessage{
		Text:   summary,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{header, body, footer}},
	}
}
