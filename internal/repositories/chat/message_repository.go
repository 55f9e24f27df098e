package chat

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard_backend/internal/models/chat"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository struct{}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(db *gorm.DB, message *chat.Message) error {
	return db.Create(message).Error
}

func (r *MessageRepository) FindByID(db *gorm.DB, id string) (*chat.Message, error) {
	var message chat.Message
	err := db.First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindByIDForUpdate берет row-lock на сообщение - для переходов
// статусов, где решение принимается по текущему значению в БД,
// а не по тому, что видел клиент
func (r *MessageRepository) FindByIDForUpdate(db *gorm.DB, id string) (*chat.Message, error) {
	var message chat.Message
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindByAttachmentID находит сообщение, несущее вложение.
// AttachmentID уникален в рамках системы (uuid при загрузке).
func (r *MessageRepository) FindByAttachmentID(db *gorm.DB, attachmentID string) (*chat.Message, error) {
	var message chat.Message
	err := db.First(&message, "attachment_id = ?", attachmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// ListByThread возвращает всю историю треда в детерминированном
// порядке: created_at, при равенстве - id
func (r *MessageRepository) ListByThread(db *gorm.DB, threadID string) ([]chat.Message, error) {
	var messages []chat.Message
	err := db.
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// AdvanceDelivery двигает статус доставки вперед compare-and-set'ом:
// условие на текущий статус входит в сам UPDATE, так что гонка двух
// подтверждений не может откатить статус назад.
// Возвращает false, если переход не состоялся.
func (r *MessageRepository) AdvanceDelivery(db *gorm.DB, id string, to chat.DeliveryStatus) (bool, error) {
	var priors []chat.DeliveryStatus
	switch to {
	case chat.DeliveryDelivered:
		priors = []chat.DeliveryStatus{chat.DeliverySent}
	case chat.DeliveryRead:
		priors = []chat.DeliveryStatus{chat.DeliverySent, chat.DeliveryDelivered}
	default:
		return false, nil
	}

	result := db.Model(&chat.Message{}).
		Where("id = ?", id).
		Where("delivery IN ?", statusStrings(priors)).
		Update("delivery", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateInterview перезаписывает jsonb-нагрузку приглашения.
// Единственная разрешенная мутация содержимого сообщения.
func (r *MessageRepository) UpdateInterview(db *gorm.DB, id string, proposal chat.InterviewProposal) error {
	payload := datatypes.NewJSONType(proposal)
	result := db.Model(&chat.Message{}).
		Where("id = ? AND kind = ?", id, chat.KindInterviewRequest).
		Update("interview", payload)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func statusStrings(statuses []chat.DeliveryStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
