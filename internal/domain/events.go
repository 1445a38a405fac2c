package domain

// EventType: уровень важности события ленты безопасности.
type EventType string

const (
	EventNormal  EventType = "normal"
	EventWarning EventType = "warning"
	EventDanger  EventType = "danger"
)

// SecurityEvent: элемент ленты. Timestamp уже готовая строка для показа.
type SecurityEvent struct {
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	Type      EventType `json:"type"`
}
