package models

// PushPayload is the queued description of one push notification.
type PushPayload struct {
	Target    string            `json:"target"` // RoleUser or RoleProvider
	Recipient string            `json:"recipient"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}
