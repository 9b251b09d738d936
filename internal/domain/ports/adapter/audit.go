package adapter

import "context"

// AuditSink receives operational notifications. All methods are
// fire-and-forget: implementations must swallow delivery failures so that
// auditing can never block or fail a user-facing flow.
type AuditSink interface {
	Startup(ctx context.Context, userID int64, username string)
	DialogStarted(ctx context.Context, userID int64, sessionID string)
	DialogFinished(ctx context.Context, userID int64, sessionID string, messages int)
	APIError(ctx context.Context, userID int64, errText string)
	PaymentRequest(ctx context.Context, userID int64, username string)
	SubscriptionGranted(ctx context.Context, adminID, targetID int64, targetUsername string)
	ReferralRegistered(ctx context.Context, inviterID, invitedID int64, invitedUsername string)
}
