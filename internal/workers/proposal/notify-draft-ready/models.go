package notifydraftready

type Input struct {
	UserEmail    string `json:"userEmail"`
	UserPhone    string `json:"userPhone,omitempty"`
	ClientName   string `json:"clientName"`
	DraftID      string `json:"draftId"`
	PackageCount int    `json:"packageCount"`
	Confidence   int    `json:"confidence"`
	Priority     string `json:"priority,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
