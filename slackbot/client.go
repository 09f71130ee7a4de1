package slackbot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/guaranteeops/reconbot/eventctx"
	"github.com/guaranteeops/reconbot/metrics"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// SlackAPI is the part of the Slack Web API the bot uses, satisfied by
// *slack.Client.
type SlackAPI interface {
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	PublishViewContext(ctx context.Context, userID string, view slack.HomeTabViewRequest, hash string) (*slack.ViewResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Acks socket mode envelopes, satisfied by *socketmode.Client.
type EnvelopeAcker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// SubmissionHandler turns a submitted report request into the text that
// gets published to the submitter's Home tab.
type SubmissionHandler func(ctx context.Context, submission *ReportSubmission) (string, error)

// Bot serves the report workflow over Slack socket mode: entry buttons in
// the configured channels, a data-entry modal and results on the Home tab.
type Bot struct {
	cfg     *ReportConfig
	web     SlackAPI
	socket  *socketmode.Client
	handler SubmissionHandler
	metrics *metrics.Metrics

	httpClient *http.Client
	now        func() time.Time
}

func New(webClient *slack.Client, cfg *ReportConfig, handler SubmissionHandler, m *metrics.Metrics) *Bot {
	return &Bot{
		cfg:        cfg,
		web:        webClient,
		socket:     socketmode.New(webClient),
		handler:    handler,
		metrics:    m,
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
}

// Run connects over socket mode and processes events until the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		for evt := range b.socket.Events {
			b.handleEvent(ctx, b.socket, evt)
		}
	}()
	return b.socket.RunContext(ctx)
}

// PostEntryButtons sends the message carrying the data-entry button to
// every configured channel.
func (b *Bot) PostEntryButtons(ctx context.Context) error {
	button := slack.NewButtonBlockElement(
		openModalActionID,
		"report",
		slack.NewTextBlockObject(slack.PlainTextType, b.cfg.EntryButtonText, true, false),
	)
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, b.cfg.EntryMessage, false, false),
		nil,
		slack.NewAccessory(button),
	)
	for _, channel := range b.cfg.Channels {
		_, _, err := b.web.PostMessageContext(ctx, channel,
			slack.MsgOptionText(b.cfg.EntryMessage, false),
			slack.MsgOptionBlocks(section),
		)
		if err != nil {
			return fmt.Errorf("could not post entry button to %s: %w", channel, err)
		}
		slog.InfoContext(ctx, "Posted entry button", "channel", channel)
	}
	return nil
}

func (b *Bot) handleEvent(ctx context.Context, acker EnvelopeAcker, evt socketmode.Event) {
	//Every envelope needs an ack or Slack redelivers it.
	if evt.Request != nil {
		acker.Ack(*evt.Request)
	}

	switch evt.Type {
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		ctx = b.contextForEnvelope(ctx, evt, string(evt.Type))
		b.handleEventsAPI(ctx, apiEvent)
	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}
		ctx = b.contextForEnvelope(ctx, evt, string(callback.Type))
		b.handleInteraction(ctx, &callback)
	case socketmode.EventTypeConnected:
		slog.Info("Socket mode connected")
	case socketmode.EventTypeConnectionError:
		slog.Warn("Socket mode connection error", "error", evt.Data)
	}
}

func (b *Bot) contextForEnvelope(ctx context.Context, evt socketmode.Event, kind string) context.Context {
	envelopeID := ""
	if evt.Request != nil {
		envelopeID = evt.Request.EnvelopeID
	}
	b.metrics.EventsReceived.WithLabelValues(kind).Inc()
	return eventctx.NewContextForEvent(ctx, envelopeID, kind)
}

func (b *Bot) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	message, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		slog.DebugContext(ctx, "Ignoring events API event", "innerType", apiEvent.InnerEvent.Type)
		return
	}
	//Ignore our own messages or those of other bots to avoid loops
	if message.BotID != "" {
		return
	}
	eventctx.SetUser(ctx, message.User)
	eventctx.SetChannel(ctx, message.Channel)
	slog.InfoContext(ctx, "Received message", "text", message.Text)
}

func (b *Bot) handleInteraction(ctx context.Context, callback *slack.InteractionCallback) {
	eventctx.SetUser(ctx, callback.User.ID)

	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		if !hasAction(callback, openModalActionID) {
			return
		}
		//Default the range to the previous day, the usual reporting window
		end := b.now()
		start := end.AddDate(0, 0, -1)
		modal := NewReportModal(b.cfg, start, end)
		if _, err := b.web.OpenViewContext(ctx, callback.TriggerID, modal); err != nil {
			slog.ErrorContext(ctx, "Could not open report modal", "error", err)
		}
	case slack.InteractionTypeViewSubmission:
		if callback.View.CallbackID != reportModalCallbackID {
			return
		}
		b.metrics.ModalSubmissions.Inc()
		b.handleSubmission(ctx, callback)
	}
}

func (b *Bot) handleSubmission(ctx context.Context, callback *slack.InteractionCallback) {
	submission, err := ParseSubmission(callback, b.cfg)
	if err != nil {
		b.metrics.SubmissionFailures.Inc()
		slog.WarnContext(ctx, "Rejected report submission", "error", err)
		return
	}
	slog.InfoContext(ctx, "Handling report submission",
		"startDate", submission.StartDate.Format(dateLayout),
		"endDate", submission.EndDate.Format(dateLayout))

	result, err := b.handler(ctx, submission)
	if err != nil {
		b.metrics.SubmissionFailures.Inc()
		slog.ErrorContext(ctx, "Report run failed", "error", err)
		if err := b.Notify(ctx, fmt.Sprintf("Report run for <@%s> failed: %s", submission.UserID, err)); err != nil {
			slog.WarnContext(ctx, "Could not send failure notification", "error", err)
		}
		return
	}
	if err := b.PublishResult(ctx, submission.UserID, submission, result); err != nil {
		b.metrics.SubmissionFailures.Inc()
		slog.ErrorContext(ctx, "Could not publish report result", "error", err)
	}
}

func hasAction(callback *slack.InteractionCallback, actionID string) bool {
	for _, action := range callback.ActionCallback.BlockActions {
		if action.ActionID == actionID {
			return true
		}
	}
	return false
}
