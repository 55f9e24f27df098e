package chat

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobboard_backend/internal/models/chat"
)

var ErrThreadNotFound = errors.New("chat thread not found")

type ThreadRepository struct{}

func NewThreadRepository() *ThreadRepository {
	return &ThreadRepository{}
}

// Create создает тред; уникальность тройки гарантирует индекс
func (r *ThreadRepository) Create(db *gorm.DB, thread *chat.ChatThread) error {
	return db.Create(thread).Error
}

// FindByID возвращает тред без сообщений
func (r *ThreadRepository) FindByID(db *gorm.DB, id string) (*chat.ChatThread, error) {
	var thread chat.ChatThread
	err := db.First(&thread, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// FindByApplication ищет существующий тред отклика
func (r *ThreadRepository) FindByApplication(db *gorm.DB, applicationID string) (*chat.ChatThread, error) {
	var thread chat.ChatThread
	err := db.First(&thread, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return &thread, nil
}

// ListByUser возвращает треды пользователя, самые активные первыми
func (r *ThreadRepository) ListByUser(db *gorm.DB, userID string) ([]chat.ChatThread, error) {
	var threads []chat.ChatThread
	err := db.
		Where("applicant_id = ? OR recruiter_id = ?", userID, userID).
		Order("last_activity_at DESC").
		Find(&threads).Error
	return threads, err
}

// Touch обновляет превью и время последней активности.
// Вызывается ровно один раз на успешную отправку, в той же
// транзакции, что и вставка сообщения.
func (r *ThreadRepository) Touch(db *gorm.DB, threadID, preview string, at time.Time) error {
	result := db.Model(&chat.ChatThread{}).
		Where("id = ?", threadID).
		Updates(map[string]interface{}{
			"last_message_preview": preview,
			"last_activity_at":     at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

// Delete удаляет тред вместе с сообщениями
func (r *ThreadRepository) Delete(db *gorm.DB, threadID string) error {
	if err := db.Where("thread_id = ?", threadID).Delete(&chat.Message{}).Error; err != nil {
		return err
	}
	return db.Delete(&chat.ChatThread{}, "id = ?", threadID).Error
}
