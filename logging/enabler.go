package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/guaranteeops/reconbot/eventctx"
)

type ForceEnabler interface {
	IsForceEnabled(context.Context, slog.Level) bool
}

//By default we do not force logging to be enabled.
type neverForce struct{}

func (f neverForce) IsForceEnabled(_ context.Context, _ slog.Level) bool {
	return false
}

//Force full logging for events triggered by specific users. Useful to debug
//a problem one operator reports without drowning in everyone else's events.
type forceForSlackUser struct {
	UserIDs []string
}

func (f forceForSlackUser) IsForceEnabled(ctx context.Context, _ slog.Level) bool {
	eCtx, ok := eventctx.FromContext(ctx)
	if !ok {
		return false
	}
	for _, userID := range f.UserIDs {
		if strings.EqualFold(eCtx.UserID, userID) {
			return true
		}
	}
	return false
}

func NewForceForSlackUsers(userIDs ...string) *forceForSlackUser {
	return &forceForSlackUser{
		UserIDs: userIDs,
	}
}
