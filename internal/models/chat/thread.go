package chat

import "time"

// ChatThread - один канал общения соискателя и рекрутера в рамках
// одного отклика на вакансию. Тройка (applicant, recruiter, application)
// уникальна: второй тред для той же тройки создать нельзя.
type ChatThread struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ApplicationID string `gorm:"not null;uniqueIndex:ux_thread_triple"`
	ApplicantID   string `gorm:"not null;uniqueIndex:ux_thread_triple;index"`
	RecruiterID   string `gorm:"not null;uniqueIndex:ux_thread_triple;index"`

	LastMessagePreview *string
	LastActivityAt     time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
}

// Схема "chat"
func (ChatThread) TableName() string {
	return "chat.threads"
}

// IsParticipant проверяет, состоит ли пользователь в треде
func (t *ChatThread) IsParticipant(userID string) bool {
	return t.ApplicantID == userID || t.RecruiterID == userID
}
