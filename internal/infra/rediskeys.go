package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "logdash"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanDashboardRefresh: внешний сигнал "перечитать статистику" (cron, оператор, соседняя реплика).
	RedisChanDashboardRefresh = RedisNamespace + ":dashboard:refresh"
)
