package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "nanban_session"
	HeaderRequestID     = "X-Request-ID"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength   = 8
	MaxAIGeneratedTasks = 20
)

// DirectMessageLabel is shown in the inbox when the other side of a DM can't be resolved.
const DirectMessageLabel = "Direct message"

const (
	DefaultDashboardCacheTTL    = 15 * time.Second
	DefaultOverdueSweepInterval = 15 * time.Minute
)
