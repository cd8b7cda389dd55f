package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
)

func newEscalationFixture(now time.Time) (*fakeTicketRepo, *recordingDispatcher, *EscalationService) {
	tickets := newFakeTicketRepo()
	dispatcher := newRecordingDispatcher()
	svc := NewEscalationService(EscalationDependencies{
		TicketRepo: tickets,
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return now },
	})
	return tickets, dispatcher, svc
}

func TestRunSweepEscalatesOverdueTickets(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := deadline.Add(time.Hour)
	tickets, dispatcher, svc := newEscalationFixture(now)

	overdue := tickets.seed(domain.Ticket{
		RequesterID: "u1",
		Status:      domain.TicketStatusAssigned,
		AssigneeID:  ptr("staff-1"),
		Priority:    domain.TicketPriorityLow,
		SLADeadline: deadline,
	})
	onTime := tickets.seed(domain.Ticket{
		RequesterID: "u1",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		SLADeadline: now.Add(time.Hour),
	})
	resolved := tickets.seed(domain.Ticket{
		RequesterID: "u1",
		Status:      domain.TicketStatusResolved,
		SLADeadline: deadline,
	})

	escalated, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, escalated)

	got := tickets.get(overdue.ID)
	assert.True(t, got.Escalated)
	assert.Equal(t, domain.TicketPriorityUrgent, got.Priority)
	// The lifecycle state itself is untouched.
	assert.Equal(t, domain.TicketStatusAssigned, got.Status)

	assert.False(t, tickets.get(onTime.ID).Escalated)
	assert.False(t, tickets.get(resolved.ID).Escalated)

	published := dispatcher.published(events.EventTicketEscalated)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.EscalatedPayload)
	assert.Equal(t, got.Code, payload.Code)
	require.NotNil(t, payload.AssigneeID)
	assert.Equal(t, "staff-1", *payload.AssigneeID)
	assert.Equal(t, events.ActorSystem, published[0].Actor.ID)
}

func TestRunSweepIsIdempotent(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tickets, dispatcher, svc := newEscalationFixture(deadline.Add(time.Hour))

	tickets.seed(domain.Ticket{
		RequesterID: "u1",
		Status:      domain.TicketStatusOpen,
		SLADeadline: deadline,
	})

	first, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second)

	assert.Len(t, dispatcher.published(events.EventTicketEscalated), 1)
}

func TestRunSweepContinuesPastFailingUpdate(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tickets, dispatcher, svc := newEscalationFixture(deadline.Add(time.Hour))

	bad := tickets.seed(domain.Ticket{RequesterID: "u1", Status: domain.TicketStatusOpen, SLADeadline: deadline})
	good := tickets.seed(domain.Ticket{RequesterID: "u1", Status: domain.TicketStatusOpen, SLADeadline: deadline})
	tickets.updateErr[bad.ID] = errors.New("write failed")

	escalated, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, escalated)

	assert.False(t, tickets.get(bad.ID).Escalated)
	assert.True(t, tickets.get(good.ID).Escalated)
	assert.Len(t, dispatcher.published(events.EventTicketEscalated), 1)
}

func TestRunSweepHonorsExactDeadlineBoundary(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// Exactly at the deadline nothing is overdue yet.
	tickets, _, svc := newEscalationFixture(deadline)

	tickets.seed(domain.Ticket{RequesterID: "u1", Status: domain.TicketStatusOpen, SLADeadline: deadline})

	escalated, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, escalated)
}
