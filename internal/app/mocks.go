package app

// MockMailer используется для тестов и локальной разработки.
type MockMailer struct{}

func (m *MockMailer) Send(to, subject, body string) error { return nil }
