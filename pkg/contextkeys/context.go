package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - это ключ, по которому мы храним *gorm.DB в context.
// Middleware кладет сюда либо общий пул, либо транзакцию (в тестах).
const DBContextKey = contextKey("db")
