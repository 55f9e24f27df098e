package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validProposal() InterviewProposal {
	return InterviewProposal{
		ProposedAt:   time.Now().Add(24 * time.Hour),
		LocationMode: LocationOnline,
		Notes:        "Zoom, 45 минут",
		Status:       InterviewPending,
	}
}

func TestInterviewProposal_Validate(t *testing.T) {
	p := validProposal()
	assert.NoError(t, p.Validate())

	noTime := validProposal()
	noTime.ProposedAt = time.Time{}
	assert.ErrorIs(t, noTime.Validate(), ErrMissingProposedTime)

	badMode := validProposal()
	badMode.LocationMode = "CARRIER_PIGEON"
	assert.ErrorIs(t, badMode.Validate(), ErrUnknownLocationMode)

	badStatus := validProposal()
	badStatus.Status = "MAYBE"
	assert.ErrorIs(t, badStatus.Validate(), ErrUnknownInterviewStatus)
}

func TestInterviewProposal_Transition(t *testing.T) {
	// PENDING -> ACCEPTED
	p := validProposal()
	assert.NoError(t, p.Transition(InterviewAccepted))
	assert.Equal(t, InterviewAccepted, p.Status)

	// Терминальный статус не переходит никуда
	assert.ErrorIs(t, p.Transition(InterviewDeclined), ErrProposalNotPending)
	assert.ErrorIs(t, p.Transition(InterviewAccepted), ErrProposalNotPending)
	assert.Equal(t, InterviewAccepted, p.Status, "Неудачный переход не меняет статус")

	// PENDING -> DECLINED
	p2 := validProposal()
	assert.NoError(t, p2.Transition(InterviewDeclined))
	assert.Equal(t, InterviewDeclined, p2.Status)

	// Переход в PENDING или мусор запрещен всегда
	p3 := validProposal()
	assert.ErrorIs(t, p3.Transition(InterviewPending), ErrUnknownInterviewStatus)
	assert.ErrorIs(t, p3.Transition("LATER"), ErrUnknownInterviewStatus)
	assert.Equal(t, InterviewPending, p3.Status)
}

func TestInterviewStatus_Terminal(t *testing.T) {
	assert.False(t, InterviewPending.Terminal())
	assert.True(t, InterviewAccepted.Terminal())
	assert.True(t, InterviewDeclined.Terminal())
}

func TestDelivery_CanAdvance(t *testing.T) {
	assert.True(t, CanAdvanceDelivery(DeliverySent, DeliveryDelivered))
	assert.True(t, CanAdvanceDelivery(DeliverySent, DeliveryRead))
	assert.True(t, CanAdvanceDelivery(DeliveryDelivered, DeliveryRead))

	// Назад и на месте - нельзя
	assert.False(t, CanAdvanceDelivery(DeliveryRead, DeliveryDelivered))
	assert.False(t, CanAdvanceDelivery(DeliveryRead, DeliverySent))
	assert.False(t, CanAdvanceDelivery(DeliveryDelivered, DeliverySent))
	assert.False(t, CanAdvanceDelivery(DeliverySent, DeliverySent))

	// Мусорные статусы
	assert.False(t, CanAdvanceDelivery("UNKNOWN", DeliveryRead))
	assert.False(t, CanAdvanceDelivery(DeliverySent, "UNKNOWN"))
}

func TestMessageKind_RequiresAttachment(t *testing.T) {
	assert.True(t, KindImage.RequiresAttachment())
	assert.True(t, KindFile.RequiresAttachment())
	assert.False(t, KindText.RequiresAttachment())
	assert.False(t, KindInterviewRequest.RequiresAttachment())
}
