package gateway

// SendRequest is the body of POST /notifications/send.
type SendRequest struct {
	NotificationType string                 `json:"notification_type" binding:"required"`
	TemplateCode     string                 `json:"template_code" binding:"required"`
	Variables        map[string]interface{} `json:"variables"`
	RequestID        string                 `json:"request_id" binding:"required"`
	Priority         int                    `json:"priority"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type SendResponse struct {
	NotificationID string   `json:"notification_id"`
	Status         string   `json:"status"`
	Queues         []string `json:"queues"`
}
