package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler *AuthHandler
	JobHandler  *JobHandler
	ChatHandler *ChatHandler
}
