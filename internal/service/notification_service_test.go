package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

func newNotificationFixture() (*fakeNotificationRepo, *fakeUserRepo, *recordingDispatcher, *NotificationService) {
	notifications := newFakeNotificationRepo()
	users := newFakeUserRepo()
	dispatcher := newRecordingDispatcher()
	svc := NewNotificationService(notifications, users, dispatcher, nil)
	svc.RegisterHandlers()
	return notifications, users, dispatcher, svc
}

func TestStatusChangeNotifiesRequester(t *testing.T) {
	notifications, _, dispatcher, _ := newNotificationFixture()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventStatusChanged,
		TicketID: "ticket-1",
		Actor:    events.Actor{ID: "staff-1", Role: domain.RoleStaff},
		Payload: events.StatusChangedPayload{
			RequesterID: "user-1",
			Title:       "Broken AC",
			OldStatus:   domain.TicketStatusAssigned,
			NewStatus:   domain.TicketStatusInProgress,
		},
	})
	require.NoError(t, err)

	records := notifications.all()
	require.Len(t, records, 1)
	assert.Equal(t, "user-1", records[0].RecipientID)
	assert.Equal(t, domain.NotificationStatusChange, records[0].Type)
	assert.Contains(t, records[0].Message, "In-Progress")
	assert.False(t, records[0].Read)
}

func TestAssignmentNotifiesRequesterAndAssignee(t *testing.T) {
	notifications, _, dispatcher, _ := newNotificationFixture()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventAssignmentChanged,
		TicketID: "ticket-1",
		Actor:    events.Actor{ID: events.ActorSystem},
		Payload: events.AssignmentChangedPayload{
			RequesterID: "user-1",
			AssigneeID:  "staff-1",
			Title:       "Broken AC",
		},
	})
	require.NoError(t, err)

	records := notifications.all()
	require.Len(t, records, 2)
	recipients := []string{records[0].RecipientID, records[1].RecipientID}
	assert.ElementsMatch(t, []string{"user-1", "staff-1"}, recipients)
	for _, record := range records {
		assert.Equal(t, domain.NotificationAssignment, record.Type)
	}
}

func TestEscalationNotifiesAdminsAndAssignee(t *testing.T) {
	notifications, users, dispatcher, _ := newNotificationFixture()
	users.add(domain.User{ID: "admin-1", Role: domain.RoleAdmin, Active: true})
	users.add(domain.User{ID: "admin-2", Role: domain.RoleAdmin, Active: true})
	users.add(domain.User{ID: "user-1", Role: domain.RoleUser, Active: true})

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: "ticket-1",
		Actor:    events.Actor{ID: events.ActorSystem},
		Payload: events.EscalatedPayload{
			Code:       "COMP-1004",
			Title:      "Broken AC",
			AssigneeID: ptr("staff-1"),
		},
	})
	require.NoError(t, err)

	records := notifications.all()
	require.Len(t, records, 3)
	recipients := make([]string, 0, len(records))
	for _, record := range records {
		recipients = append(recipients, record.RecipientID)
		assert.Equal(t, domain.NotificationEscalation, record.Type)
		assert.Contains(t, record.Message, "COMP-1004")
	}
	assert.ElementsMatch(t, []string{"admin-1", "admin-2", "staff-1"}, recipients)
}

func TestDeliveryFailureDoesNotPropagate(t *testing.T) {
	notifications, _, dispatcher, _ := newNotificationFixture()
	notifications.createErr = errors.New("insert failed")

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventStatusChanged,
		TicketID: "ticket-1",
		Payload: events.StatusChangedPayload{
			RequesterID: "user-1",
			NewStatus:   domain.TicketStatusResolved,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, notifications.all())
}

func TestMarkReadEnforcesRecipient(t *testing.T) {
	notifications, users, _, svc := newNotificationFixture()
	owner := users.add(domain.User{ID: "user-1", Role: domain.RoleUser, Active: true})
	other := users.add(domain.User{ID: "user-2", Role: domain.RoleUser, Active: true})

	record := &domain.NotificationRecord{
		RecipientID: owner.ID,
		TicketID:    "ticket-1",
		Type:        domain.NotificationStatusChange,
		Message:     "update",
	}
	require.NoError(t, notifications.Create(context.Background(), record))

	err := svc.MarkRead(context.Background(), other, record.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	require.NoError(t, svc.MarkRead(context.Background(), owner, record.ID))
	assert.True(t, notifications.all()[0].Read)

	listed, err := svc.ListForUser(context.Background(), owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Read)
}
