package handlers

import (
	"nafany/utils"
)

// HandlerBundle groups all endpoint handlers and what the routes need to guard them.
type HandlerBundle struct {
	Tokens  *utils.TokenManager
	Revoked utils.Cache

	MaxRequestsPerMin int

	Session  *SessionHandler
	Settings *SettingsHandler
	User     *UserHandler
	Provider *ProviderHandler
	Booking  *BookingHandler
	Feedback *FeedbackHandler
	Chat     *ChatHandler
	Admin    *AdminHandler
}
