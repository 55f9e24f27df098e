package chat

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	modelChat "jobboard_backend/internal/models/chat"
	"jobboard_backend/internal/repositories"
	repoChat "jobboard_backend/internal/repositories/chat"
	"jobboard_backend/pkg/apperrors"
)

const previewLimit = 120

// Notifier получает уведомления о событиях чата.
// Реализация живет в services (email), здесь только контракт.
type Notifier interface {
	InterviewProposed(applicant *models.User, thread *modelChat.ChatThread, proposal *modelChat.InterviewProposal)
}

type ChatService struct {
	Threads      *repoChat.ThreadRepository
	Messages     *repoChat.MessageRepository
	Users        repositories.UserRepository
	Applications repositories.ApplicationRepository

	notifier Notifier
}

func NewChatService(
	threads *repoChat.ThreadRepository,
	messages *repoChat.MessageRepository,
	users repositories.UserRepository,
	applications repositories.ApplicationRepository,
) *ChatService {
	return &ChatService{
		Threads:      threads,
		Messages:     messages,
		Users:        users,
		Applications: applications,
	}
}

// SetNotifier подключает отправку уведомлений (опционально)
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// OpenThread возвращает тред отклика, создавая его при первом обращении.
// На одну тройку (applicant, recruiter, application) существует ровно
// один тред - повторное открытие возвращает существующий.
func (s *ChatService) OpenThread(db *gorm.DB, applicationID, actorID string) (*modelChat.ChatThread, error) {
	application, err := s.Applications.FindByID(db, applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if application.Job == nil {
		return nil, apperrors.ErrJobNotFound
	}

	recruiterID := application.Job.RecruiterID
	if actorID != application.ApplicantID && actorID != recruiterID {
		return nil, apperrors.ErrThreadAccessDenied
	}

	existing, err := s.Threads.FindByApplication(db, applicationID)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, repoChat.ErrThreadNotFound) {
		return nil, apperrors.InternalError(err)
	}

	thread := &modelChat.ChatThread{
		ID:             uuid.New().String(),
		ApplicationID:  applicationID,
		ApplicantID:    application.ApplicantID,
		RecruiterID:    recruiterID,
		LastActivityAt: time.Now(),
	}
	if err := s.Threads.Create(db, thread); err != nil {
		// Гонка двух первых обращений: уникальный индекс по тройке
		// оставляет одного победителя, проигравший перечитывает
		if apperrors.Is(err, gorm.ErrDuplicatedKey) {
			return s.Threads.FindByApplication(db, applicationID)
		}
		return nil, apperrors.InternalError(err)
	}
	return thread, nil
}

// ListThreads возвращает треды пользователя, самые активные первыми.
// Пустой список - валидный ответ; NotFound только если пользователя нет.
func (s *ChatService) ListThreads(db *gorm.DB, userID string) ([]modelChat.ChatThread, error) {
	exists, err := s.Users.Exists(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !exists {
		return nil, apperrors.ErrNotFound(repositories.ErrUserNotFound)
	}
	threads, err := s.Threads.ListByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return threads, nil
}

// GetThread возвращает тред с полной историей сообщений
func (s *ChatService) GetThread(db *gorm.DB, threadID, userID string) (*modelChat.ChatThread, []modelChat.Message, error) {
	thread, err := s.loadThreadForUser(db, threadID, userID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.Messages.ListByThread(db, threadID)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}
	return thread, messages, nil
}

type SendMessageInput struct {
	ThreadID   string
	SenderID   string
	Kind       modelChat.MessageKind
	Content    string
	Attachment *modelChat.AttachmentMeta
}

// SendMessage добавляет сообщение в тред. Вставка сообщения и
// обновление превью треда происходят в одной транзакции: сообщение
// без обновленного превью существовать не может.
func (s *ChatService) SendMessage(db *gorm.DB, input SendMessageInput) (*modelChat.Message, error) {
	thread, err := s.loadThreadForUser(db, input.ThreadID, input.SenderID)
	if err != nil {
		return nil, err
	}

	if !modelChat.ValidKind(input.Kind) {
		return nil, apperrors.ErrInvalidMessageKind
	}

	senderRole := string(models.UserRoleApplicant)
	if input.SenderID == thread.RecruiterID {
		senderRole = string(models.UserRoleRecruiter)
	}

	message := &modelChat.Message{
		ID:         uuid.New().String(),
		ThreadID:   thread.ID,
		SenderID:   input.SenderID,
		SenderRole: senderRole,
		Kind:       input.Kind,
		Content:    input.Content,
		Delivery:   modelChat.DeliverySent,
		CreatedAt:  time.Now(), // время назначает сервер, не клиент
	}

	var proposal *modelChat.InterviewProposal
	switch {
	case input.Kind.RequiresAttachment():
		if input.Attachment == nil {
			return nil, apperrors.ErrAttachmentRequired
		}
		message.AttachmentID = &input.Attachment.ID
		message.AttachmentName = &input.Attachment.Filename
		message.AttachmentSize = &input.Attachment.Size
		message.AttachmentMime = &input.Attachment.MimeType

	case input.Kind == modelChat.KindInterviewRequest:
		proposal, err = parseProposal(input.Content)
		if err != nil {
			return nil, apperrors.ErrMalformedProposal.WithError(err)
		}
		payload := datatypes.NewJSONType(*proposal)
		message.Interview = &payload
		message.Content = "" // нагрузка живет в типизированной колонке
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.Messages.Create(tx, message); err != nil {
			return err
		}
		return s.Threads.Touch(tx, thread.ID, previewOf(message), message.CreatedAt)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if proposal != nil && input.SenderID == thread.RecruiterID {
		s.notifyInterviewProposed(db, thread, proposal)
	}

	return message, nil
}

// UpdateDeliveryStatus двигает статус доставки вперед. Переход
// проверяется по значению в БД, а не по тому, что видел клиент:
// гонка подтверждений не откатывает READ назад.
func (s *ChatService) UpdateDeliveryStatus(db *gorm.DB, threadID, messageID, actorID string, to modelChat.DeliveryStatus) (*modelChat.Message, error) {
	thread, err := s.loadThreadForUser(db, threadID, actorID)
	if err != nil {
		return nil, err
	}

	message, err := s.loadThreadMessage(db, thread, messageID)
	if err != nil {
		return nil, err
	}

	if message.SenderID == actorID {
		// Доставку подтверждает получатель, не автор
		return nil, apperrors.NewForbiddenError("Sender cannot confirm delivery of own message")
	}
	if !modelChat.ValidDeliveryStatus(to) {
		return nil, apperrors.NewBadRequestError("Unknown delivery status: " + string(to))
	}

	moved, err := s.Messages.AdvanceDelivery(db, messageID, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !moved {
		current, err := s.Messages.FindByID(db, messageID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if current.Delivery == to {
			// Повторное подтверждение - идемпотентный no-op
			return current, nil
		}
		return nil, apperrors.ErrDeliveryStatusRegression
	}

	message.Delivery = to
	return message, nil
}

// UpdateInterviewStatus принимает или отклоняет приглашение на интервью.
// Единственные допустимые переходы: PENDING -> ACCEPTED | DECLINED,
// и делает их только соискатель - рекрутер, создавший приглашение,
// не входит в число допустимых акторов.
func (s *ChatService) UpdateInterviewStatus(db *gorm.DB, threadID, messageID, actorID string, to modelChat.InterviewStatus) (*modelChat.Message, error) {
	thread, err := s.loadThreadForUser(db, threadID, actorID)
	if err != nil {
		return nil, err
	}

	if actorID != thread.ApplicantID {
		return nil, apperrors.ErrProposalActorForbidden
	}

	var updated *modelChat.Message
	err = db.Transaction(func(tx *gorm.DB) error {
		message, err := s.Messages.FindByIDForUpdate(tx, messageID)
		if err != nil {
			if apperrors.Is(err, repoChat.ErrMessageNotFound) {
				return apperrors.ErrMessageNotFound
			}
			return apperrors.InternalError(err)
		}
		if message.ThreadID != thread.ID {
			return apperrors.ErrMessageNotFound
		}

		proposal := message.Proposal()
		if proposal == nil {
			return apperrors.ErrInvalidOperation("interview", "Message is not an interview request")
		}

		if err := proposal.Transition(to); err != nil {
			if apperrors.Is(err, modelChat.ErrProposalNotPending) {
				return apperrors.ErrProposalTerminal
			}
			return apperrors.NewBadRequestError("Invalid interview status: " + string(to))
		}

		if err := s.Messages.UpdateInterview(tx, messageID, *proposal); err != nil {
			return apperrors.InternalError(err)
		}

		payload := datatypes.NewJSONType(*proposal)
		message.Interview = &payload
		updated = message
		return nil
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.InternalError(err)
	}

	return updated, nil
}

// --- внутренние помощники ---

func (s *ChatService) loadThreadForUser(db *gorm.DB, threadID, userID string) (*modelChat.ChatThread, error) {
	thread, err := s.Threads.FindByID(db, threadID)
	if err != nil {
		if apperrors.Is(err, repoChat.ErrThreadNotFound) {
			return nil, apperrors.ErrThreadNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !thread.IsParticipant(userID) {
		return nil, apperrors.ErrThreadAccessDenied
	}
	return thread, nil
}

func (s *ChatService) loadThreadMessage(db *gorm.DB, thread *modelChat.ChatThread, messageID string) (*modelChat.Message, error) {
	message, err := s.Messages.FindByID(db, messageID)
	if err != nil {
		if apperrors.Is(err, repoChat.ErrMessageNotFound) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if message.ThreadID != thread.ID {
		return nil, apperrors.ErrMessageNotFound
	}
	return message, nil
}

func (s *ChatService) notifyInterviewProposed(db *gorm.DB, thread *modelChat.ChatThread, proposal *modelChat.InterviewProposal) {
	if s.notifier == nil {
		return
	}
	applicant, err := s.Users.FindByID(db, thread.ApplicantID)
	if err != nil {
		logger.Warn("interview notification skipped: applicant lookup failed",
			"thread_id", thread.ID, "error", err.Error())
		return
	}
	s.notifier.InterviewProposed(applicant, thread, proposal)
}

// parseProposal разбирает сериализованное приглашение. Новое
// приглашение обязано стартовать в PENDING; явный другой статус
// при создании - ошибка валидации, не тихий дефолт.
func parseProposal(content string) (*modelChat.InterviewProposal, error) {
	var proposal modelChat.InterviewProposal

	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&proposal); err != nil {
		return nil, err
	}

	if proposal.Status == "" {
		proposal.Status = modelChat.InterviewPending
	}
	if proposal.Status != modelChat.InterviewPending {
		return nil, modelChat.ErrProposalNotPending
	}
	if err := proposal.Validate(); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func previewOf(m *modelChat.Message) string {
	var preview string
	switch m.Kind {
	case modelChat.KindInterviewRequest:
		preview = "Interview invitation"
	case modelChat.KindImage, modelChat.KindFile:
		if m.AttachmentName != nil {
			preview = *m.AttachmentName
		} else {
			preview = "Attachment"
		}
	default:
		preview = m.Content
	}

	runes := []rune(preview)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit])
	}
	return preview
}
