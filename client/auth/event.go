package auth

// Event identifies the kind of a session change notification.
type Event string

const (
	// SignedIn is emitted after a successful sign-in or sign-up.
	SignedIn Event = "SIGNED_IN"
	// SignedOut is emitted after sign-out; the accompanying session is nil.
	SignedOut Event = "SIGNED_OUT"
	// TokenRefreshed is emitted after session credentials were rotated.
	TokenRefreshed Event = "TOKEN_REFRESHED"
	// UserUpdated is emitted when the stored user identity changed.
	UserUpdated Event = "USER_UPDATED"
)
