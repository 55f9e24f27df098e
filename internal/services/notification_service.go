package services

import (
	"fmt"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	modelChat "jobboard_backend/internal/models/chat"
)

// Mailer - отправка писем. Реализация на gomail живет в utils,
// в тестах подменяется моком.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// NotificationService рассылает письма о событиях чата.
// Отправка идет в горутине: HTTP-ответ не ждет SMTP.
type NotificationService struct {
	mailer Mailer
}

func NewNotificationService(mailer Mailer) *NotificationService {
	return &NotificationService{mailer: mailer}
}

// InterviewProposed уведомляет соискателя о новом приглашении на интервью
func (s *NotificationService) InterviewProposed(applicant *models.User, thread *modelChat.ChatThread, proposal *modelChat.InterviewProposal) {
	if s.mailer == nil || applicant.Email == "" {
		return
	}

	subject := "Приглашение на интервью"
	body := fmt.Sprintf(`
		<h2>Здравствуйте, %s!</h2>
		<p>Работодатель пригласил вас на интервью.</p>
		<p><b>Дата и время:</b> %s</p>
		<p><b>Формат:</b> %s</p>
		<p>%s</p>
		<p>Принять или отклонить приглашение можно в чате отклика.</p>
	`,
		applicant.Name,
		proposal.ProposedAt.Format("02.01.2006 15:04"),
		locationModeLabel(proposal.LocationMode),
		proposal.Notes,
	)

	go func() {
		if err := s.mailer.Send(applicant.Email, subject, body); err != nil {
			logger.Error("failed to send interview notification",
				"thread_id", thread.ID,
				"error", err.Error())
		}
	}()
}

func locationModeLabel(mode modelChat.LocationMode) string {
	switch mode {
	case modelChat.LocationOnsite:
		return "В офисе"
	case modelChat.LocationOnline:
		return "Онлайн"
	case modelChat.LocationPhone:
		return "Телефонный звонок"
	}
	return string(mode)
}
