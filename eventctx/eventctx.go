package eventctx

import (
	"context"

	"github.com/google/uuid"
)

type EventCtx struct {
	//An event ID which is used to correlate log entries to the Slack event
	//that triggered the work. Slack delivers an envelope ID for socket mode
	//events; when there is none a random ID is generated.
	EventID string
	//Slack user that triggered the event, when known.
	UserID string
	//Channel the event happened in, when known.
	Channel string
	//What kind of event this is (message, block_actions, view_submission, ...)
	Kind string
}

type key int

var eventCtxKey key

func getRandomEventId() string {
	return uuid.New().String()
}

// NewContextForEvent builds a context for handling one Slack event. An empty
// envelopeID gets replaced by a random one so log correlation always works.
func NewContextForEvent(ctx context.Context, envelopeID, kind string) context.Context {
	if envelopeID == "" {
		envelopeID = getRandomEventId()
	}
	eCtx := EventCtx{
		EventID: envelopeID,
		Kind:    kind,
	}
	return NewContext(ctx, &eCtx)
}

func NewContext(ctx context.Context, eCtx *EventCtx) context.Context {
	return context.WithValue(ctx, eventCtxKey, eCtx)
}

func FromContext(ctx context.Context) (*EventCtx, bool) {
	eCtx, ok := ctx.Value(eventCtxKey).(*EventCtx)
	return eCtx, ok
}

func GetEventID(ctx context.Context) string {
	eCtx, ok := FromContext(ctx)
	if ok {
		return eCtx.EventID
	}
	return ""
}

// SetUser records the triggering user on the context once it is known.
func SetUser(ctx context.Context, userID string) {
	eCtx, ok := FromContext(ctx)
	if ok {
		eCtx.UserID = userID
	}
}

// SetChannel records the channel on the context once it is known.
func SetChannel(ctx context.Context, channel string) {
	eCtx, ok := FromContext(ctx)
	if ok {
		eCtx.Channel = channel
	}
}
