package dto

import (
	"time"

	"jobboard_backend/internal/models/chat"
)

// OpenThreadRequest представляет тело запроса открытия треда по отклику
type OpenThreadRequest struct {
	ApplicationID string `json:"application_id" validate:"required"`
}

// SendMessageRequest представляет тело запроса отправки сообщения
// @Description message - текст для TEXT, либо сериализованное приглашение
// @Description на интервью для INTERVIEW_REQUEST (status обязан быть PENDING)
// @Example {"message":"Здравствуйте!", "messageType":"TEXT"}
type SendMessageRequest struct {
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType" validate:"required,oneof=TEXT INTERVIEW_REQUEST"`
}

// UpdateMessageRequest представляет тело PATCH запроса по сообщению.
// status ∈ {DELIVERED, READ} - подтверждение доставки/прочтения;
// status ∈ {ACCEPTED, DECLINED} - решение по приглашению на интервью.
type UpdateMessageRequest struct {
	Content string `json:"content,omitempty"`
	Status  string `json:"status" validate:"required,oneof=DELIVERED READ ACCEPTED DECLINED"`
}

// ThreadSummaryResponse - элемент списка тредов
type ThreadSummaryResponse struct {
	ID                 string    `json:"id"`
	ApplicationID      string    `json:"application_id"`
	ApplicantID        string    `json:"applicant_id"`
	RecruiterID        string    `json:"recruiter_id"`
	LastMessagePreview *string   `json:"last_message_preview,omitempty"`
	LastActivityAt     time.Time `json:"last_activity_at"`
	CreatedAt          time.Time `json:"created_at"`
}

// MessageResponse - сообщение в ответах API
type MessageResponse struct {
	ID         string                  `json:"id"`
	ThreadID   string                  `json:"thread_id"`
	SenderID   string                  `json:"sender_id"`
	SenderRole string                  `json:"sender_role"`
	Kind       chat.MessageKind        `json:"kind"`
	Content    string                  `json:"content"`
	Delivery   chat.DeliveryStatus     `json:"delivery_status"`
	Interview  *chat.InterviewProposal `json:"interview,omitempty"`
	Attachment *chat.AttachmentMeta    `json:"attachment,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ThreadDetailResponse - тред вместе с полной историей сообщений
type ThreadDetailResponse struct {
	ThreadSummaryResponse
	Messages []MessageResponse `json:"messages"`
}

// NewMessageResponse собирает DTO из модели
func NewMessageResponse(m *chat.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		ThreadID:   m.ThreadID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Kind:       m.Kind,
		Content:    m.Content,
		Delivery:   m.Delivery,
		Interview:  m.Proposal(),
		Attachment: m.Attachment(),
		CreatedAt:  m.CreatedAt,
	}
}

// NewThreadSummaryResponse собирает DTO из модели
func NewThreadSummaryResponse(t *chat.ChatThread) ThreadSummaryResponse {
	return ThreadSummaryResponse{
		ID:                 t.ID,
		ApplicationID:      t.ApplicationID,
		ApplicantID:        t.ApplicantID,
		RecruiterID:        t.RecruiterID,
		LastMessagePreview: t.LastMessagePreview,
		LastActivityAt:     t.LastActivityAt,
		CreatedAt:          t.CreatedAt,
	}
}
