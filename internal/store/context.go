package store

import "context"

// Ambient request-scoped identity, threaded through context rather than
// passed explicitly through every call in the agent/tools/sessions stack
// (tools are invoked generically by name+args; there's no natural place to
// add typed parameters without changing every tool's signature).
type ctxKey string

const (
	ctxUserID   ctxKey = "store_user_id"
	ctxSenderID ctxKey = "store_sender_id"
)

// WithUserID attaches the external (channel-level) user ID to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFromContext returns the user ID attached by WithUserID, or "".
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

// WithSenderID attaches the original sender ID (preserved across group
// chats even when UserID reflects a resolved/canonical identity).
func WithSenderID(ctx context.Context, senderID string) context.Context {
	return context.WithValue(ctx, ctxSenderID, senderID)
}

func SenderIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxSenderID).(string)
	return v
}
