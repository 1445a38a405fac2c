package connectors

import (
	"context"

	"github.com/xela07ax/logdash/internal/domain"
)

// StaticEventSource: ЗАГЛУШКА ленты безопасности (фиксированный список, без сети).
// Реальный источник реализует тот же метод Events и подменяется при сборке.
type StaticEventSource struct {
	events []domain.SecurityEvent
}

func NewStaticEventSource() *StaticEventSource {
	return &StaticEventSource{events: sampleEvents()}
}

func (s *StaticEventSource) Events(ctx context.Context) ([]domain.SecurityEvent, error) {
	out := make([]domain.SecurityEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func sampleEvents() []domain.SecurityEvent {
	return []domain.SecurityEvent{
		{Message: "Multiple failed login attempts detected from IP 192.168.1.45", Timestamp: "2025-04-19 14:32:15", Type: domain.EventDanger},
		{Message: "Unusual SSH connection from unknown IP address 203.45.67.89", Timestamp: "2025-04-19 14:25:03", Type: domain.EventDanger},
		{Message: "Firewall rule update: Added block for IP range 45.67.89.0/24", Timestamp: "2025-04-19 14:20:47", Type: domain.EventNormal},
		{Message: `User account "admin" accessed sensitive file directory`, Timestamp: "2025-04-19 14:15:22", Type: domain.EventWarning},
		{Message: "System scan completed: 2 vulnerabilities detected", Timestamp: "2025-04-19 14:10:05", Type: domain.EventWarning},
		{Message: "Service restarted: nginx web server", Timestamp: "2025-04-19 14:05:33", Type: domain.EventNormal},
		{Message: "Database backup completed successfully", Timestamp: "2025-04-19 14:00:00", Type: domain.EventNormal},
	}
}
