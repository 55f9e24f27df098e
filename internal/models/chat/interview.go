package chat

import (
	"errors"
	"time"
)

type InterviewStatus string
type LocationMode string

const (
	InterviewPending  InterviewStatus = "PENDING"
	InterviewAccepted InterviewStatus = "ACCEPTED"
	InterviewDeclined InterviewStatus = "DECLINED"

	LocationOnsite LocationMode = "ONSITE"
	LocationOnline LocationMode = "ONLINE"
	LocationPhone  LocationMode = "PHONE"
)

var (
	ErrUnknownLocationMode    = errors.New("unknown interview location mode")
	ErrUnknownInterviewStatus = errors.New("unknown interview status")
	ErrProposalNotPending     = errors.New("interview proposal is not pending")
	ErrMissingProposedTime    = errors.New("interview proposal requires a proposed datetime")
)

// InterviewProposal - полезная нагрузка сообщения INTERVIEW_REQUEST.
// Живет внутри сообщения и не имеет собственной таблицы.
//
// Жизненный цикл: PENDING -> ACCEPTED | DECLINED, терминальные статусы
// не переходят ни во что.
type InterviewProposal struct {
	ProposedAt   time.Time       `json:"proposed_datetime"`
	LocationMode LocationMode    `json:"location_mode"`
	Notes        string          `json:"notes,omitempty"`
	Status       InterviewStatus `json:"status"`
}

// ValidInterviewStatus возвращает true для известного статуса приглашения
func ValidInterviewStatus(s InterviewStatus) bool {
	switch s {
	case InterviewPending, InterviewAccepted, InterviewDeclined:
		return true
	}
	return false
}

// Terminal - статус, из которого нет переходов
func (s InterviewStatus) Terminal() bool {
	return s == InterviewAccepted || s == InterviewDeclined
}

// Validate проверяет приглашение при записи. Невалидная нагрузка -
// нарушение целостности, а не тихий дефолт.
func (p *InterviewProposal) Validate() error {
	if p.ProposedAt.IsZero() {
		return ErrMissingProposedTime
	}
	switch p.LocationMode {
	case LocationOnsite, LocationOnline, LocationPhone:
	default:
		return ErrUnknownLocationMode
	}
	if !ValidInterviewStatus(p.Status) {
		return ErrUnknownInterviewStatus
	}
	return nil
}

// Transition переводит приглашение в терминальный статус.
// Единственные допустимые переходы: PENDING -> ACCEPTED | DECLINED.
func (p *InterviewProposal) Transition(to InterviewStatus) error {
	if to != InterviewAccepted && to != InterviewDeclined {
		return ErrUnknownInterviewStatus
	}
	if p.Status != InterviewPending {
		return ErrProposalNotPending
	}
	p.Status = to
	return nil
}
