// Package notify pushes approval-workflow updates to a Slack review
// channel so clients can see what is waiting on them.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"
)

// Notifier is what services and workers depend on. The nil-safe NoopNotifier
// keeps Slack optional in development.
type Notifier interface {
	DraftSubmitted(draftID int64, author, preview string, platforms []string) error
	DraftDecided(draftID int64, reviewer, decision, note string) error
}

// SlackNotifier posts messages via the Slack Web API.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier authenticates the bot token up front to fail fast on
// misconfiguration.
func NewSlackNotifier(token, channel string) (*SlackNotifier, error) {
	api := slack.New(token)
	if _, err := api.AuthTest(); err != nil {
		return nil, fmt.Errorf("slack auth: %w", err)
	}
	return &SlackNotifier{api: api, channel: channel}, nil
}

// DraftSubmitted announces a draft awaiting review.
func (n *SlackNotifier) DraftSubmitted(draftID int64, author, preview string, platforms []string) error {
	preview = truncatePreview(preview, 280)

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("*Draft #%d* from *%s* is waiting for review", draftID, author), false, false),
			nil, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("> %s", preview), false, false),
			nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("Platforms: %s", strings.Join(platforms, ", ")), false, false)),
	}

	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}

// DraftDecided announces an approval or rejection.
func (n *SlackNotifier) DraftDecided(draftID int64, reviewer, decision, note string) error {
	msg := fmt.Sprintf("Draft #%d was *%s* by %s", draftID, decision, reviewer)
	if note != "" {
		msg += fmt.Sprintf("\n> %s", note)
	}

	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(msg, false))
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}

// truncatePreview cuts on a rune boundary so the message stays valid UTF-8.
func truncatePreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// NoopNotifier drops notifications. Used when Slack is not configured.
type NoopNotifier struct{}

func (NoopNotifier) DraftSubmitted(draftID int64, author, preview string, platforms []string) error {
	log.Printf("[Notify] (noop) draft %d submitted by %s", draftID, author)
	return nil
}

func (NoopNotifier) DraftDecided(draftID int64, reviewer, decision, note string) error {
	log.Printf("[Notify] (noop) draft %d %s by %s", draftID, decision, reviewer)
	return nil
}
