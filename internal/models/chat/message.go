package chat

import (
	"time"

	"gorm.io/datatypes"
)

type MessageKind string
type DeliveryStatus string

const (
	KindText             MessageKind = "TEXT"
	KindImage            MessageKind = "IMAGE"
	KindFile             MessageKind = "FILE"
	KindInterviewRequest MessageKind = "INTERVIEW_REQUEST"

	DeliverySent      DeliveryStatus = "SENT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryRead      DeliveryStatus = "READ"
)

// deliveryRank - порядок статусов доставки; переход допустим только вперед
var deliveryRank = map[DeliveryStatus]int{
	DeliverySent:      0,
	DeliveryDelivered: 1,
	DeliveryRead:      2,
}

// ValidKind возвращает true для известного типа сообщения
func ValidKind(k MessageKind) bool {
	switch k {
	case KindText, KindImage, KindFile, KindInterviewRequest:
		return true
	}
	return false
}

// ValidDeliveryStatus возвращает true для известного статуса доставки
func ValidDeliveryStatus(s DeliveryStatus) bool {
	_, ok := deliveryRank[s]
	return ok
}

// CanAdvanceDelivery проверяет, что переход from -> to не откатывает статус
func CanAdvanceDelivery(from, to DeliveryStatus) bool {
	fromRank, okFrom := deliveryRank[from]
	toRank, okTo := deliveryRank[to]
	return okFrom && okTo && toRank > fromRank
}

// RequiresAttachment - тип сообщения невалиден без вложения
func (k MessageKind) RequiresAttachment() bool {
	return k == KindImage || k == KindFile
}

// Message - одно сообщение в треде. created_at всегда назначается
// сервером, клиентское время не принимается.
//
// Содержимое INTERVIEW_REQUEST хранится не строкой, а типизированной
// jsonb-колонкой Interview и валидируется при записи. Это единственный
// вид сообщения, чье содержимое может мутировать после создания
// (переход статуса приглашения).
type Message struct {
	ID         string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ThreadID   string         `gorm:"index;not null"`
	SenderID   string         `gorm:"index;not null"`
	SenderRole string         `gorm:"type:varchar(20);not null"` // applicant, recruiter
	Kind       MessageKind    `gorm:"type:varchar(20);not null;default:'TEXT'"`
	Content    string         `gorm:"type:text"`
	Delivery   DeliveryStatus `gorm:"type:varchar(20);not null;default:'SENT'"`

	// Вложение - только для IMAGE/FILE; сам файл живет во внешнем
	// хранилище и адресуется по AttachmentID
	AttachmentID   *string `gorm:"index"`
	AttachmentName *string
	AttachmentSize *int64
	AttachmentMime *string

	// Приглашение на интервью - только для INTERVIEW_REQUEST
	Interview *datatypes.JSONType[InterviewProposal] `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"index"`
}

// Схема "chat"
func (Message) TableName() string {
	return "chat.messages"
}

// AttachmentMeta - метаданные вложения в ответах API
type AttachmentMeta struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size_bytes"`
	MimeType string `json:"mime_type"`
}

// Attachment собирает метаданные вложения, если они есть
func (m *Message) Attachment() *AttachmentMeta {
	if m.AttachmentID == nil {
		return nil
	}
	meta := &AttachmentMeta{ID: *m.AttachmentID}
	if m.AttachmentName != nil {
		meta.Filename = *m.AttachmentName
	}
	if m.AttachmentSize != nil {
		meta.Size = *m.AttachmentSize
	}
	if m.AttachmentMime != nil {
		meta.MimeType = *m.AttachmentMime
	}
	return meta
}

// Proposal возвращает встроенное приглашение или nil
func (m *Message) Proposal() *InterviewProposal {
	if m.Kind != KindInterviewRequest || m.Interview == nil {
		return nil
	}
	p := m.Interview.Data()
	return &p
}
