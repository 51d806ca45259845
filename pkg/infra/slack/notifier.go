package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/interfaces"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
}

// NewNotifier creates a notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL string) interfaces.Notifier {
	return &notifier{
		webhookURL: webhookURL,
	}
}

// NotifyUpdate posts a one-line summary of a completed update
func (n *notifier) NotifyUpdate(ctx context.Context, target model.Target, result *model.UpdateResult) error {
	msg := &slack.WebhookMessage{
		Text: FormatMessage(target, result),
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack webhook", goerr.V("repo", target.FullName()))
	}
	return nil
}

// FormatMessage renders the update summary posted to Slack
func FormatMessage(target model.Target, result *model.UpdateResult) string {
	from := "(none)"
	if result.Previous != nil && result.Previous.Version != "" {
		from = result.Previous.Version
	}
	return fmt.Sprintf("%s updated %s -> %s (`%s`)", target.FullName(), from, result.Current.Version, result.Current.Rev)
}
