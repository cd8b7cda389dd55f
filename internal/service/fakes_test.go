package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/events"
	"github.com/kaveyan18/resolve-desk/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository with the same versioning
// contract as the Postgres implementation.
type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	order   []string
	tickets map[string]*domain.Ticket

	updateErr map[string]error
	countErr  map[string]error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:   make(map[string]*domain.Ticket),
		updateErr: make(map[string]error),
		countErr:  make(map[string]error),
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.Code = fmt.Sprintf("COMP-%d", 1000+f.seq)
	ticket.Version = 1
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	stored := *ticket
	f.tickets[ticket.ID] = &stored
	f.order = append(f.order, ticket.ID)
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.updateErr[ticket.ID]; ok {
		return err
	}
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if f.tickets[id].Code == code {
			copied := *f.tickets[id]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, id := range f.order {
		t := f.tickets[id]
		if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if t.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTicketRepo) ListOpenForAssignment(_ context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, id := range f.order {
		if f.tickets[id].Status == domain.TicketStatusOpen {
			out = append(out, *f.tickets[id])
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListOverdue(_ context.Context, now time.Time) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, id := range f.order {
		if f.tickets[id].Overdue(now) {
			out = append(out, *f.tickets[id])
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) CountActiveByAssignee(_ context.Context, staffID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.countErr[staffID]; ok {
		return 0, err
	}
	count := 0
	for _, t := range f.tickets {
		if t.AssigneeID != nil && *t.AssigneeID == staffID && t.Status.CountsTowardWorkload() {
			count++
		}
	}
	return count, nil
}

// get returns the stored ticket for assertions.
func (f *fakeTicketRepo) get(id string) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.tickets[id]
	return &copied
}

// seed inserts a ticket bypassing Create so tests control every field.
func (f *fakeTicketRepo) seed(ticket domain.Ticket) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	}
	if ticket.Code == "" {
		ticket.Code = fmt.Sprintf("COMP-%d", 1000+f.seq)
	}
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	stored := ticket
	f.tickets[ticket.ID] = &stored
	f.order = append(f.order, ticket.ID)
	return &stored
}

// fakeUserRepo is an in-memory UserRepository. Insertion order doubles as
// the created_at ordering of the Postgres implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	order []string
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) add(user domain.User) *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := user
	f.users[user.ID] = &stored
	f.order = append(f.order, user.ID)
	return &stored
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.order)+1)
	}
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if f.users[id].Email == email {
			copied := *f.users[id]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListStaff(_ context.Context, filter repository.StaffFilter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, id := range f.order {
		u := f.users[id]
		if u.Role != domain.RoleStaff {
			continue
		}
		if filter.OnlyAssignable && !u.Assignable() {
			continue
		}
		if filter.Skill != nil && !u.HasSkill(*filter.Skill) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var out []domain.User
	for i := offset; i < len(f.order) && len(out) < limit; i++ {
		out = append(out, *f.users[f.order[i]])
	}
	return out, nil
}

func (f *fakeUserRepo) ListAdmins(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, id := range f.order {
		if f.users[id].Role == domain.RoleAdmin && f.users[id].Active {
			out = append(out, *f.users[id])
		}
	}
	return out, nil
}

// fakeNotificationRepo is an in-memory NotificationRepository.
type fakeNotificationRepo struct {
	mu        sync.Mutex
	seq       int
	records   []domain.NotificationRecord
	createErr error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) Create(_ context.Context, record *domain.NotificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	record.ID = fmt.Sprintf("notif-%d", f.seq)
	record.CreatedAt = time.Now()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			copied := f.records[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, limit int) ([]domain.NotificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.NotificationRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].RecipientID == recipientID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) all() []domain.NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.NotificationRecord, len(f.records))
	copy(out, f.records)
	return out
}

// fakeSettingsRepo holds the single settings row.
type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings domain.SystemSettings
	getErr   error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: domain.DefaultSettings()}
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*domain.SystemSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	copied := f.settings
	return &copied, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, settings *domain.SystemSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = *settings
	f.settings.UpdatedAt = time.Now()
	return nil
}

// fakeChatRepo is an in-memory ChatMessageRepository.
type fakeChatRepo struct {
	mu       sync.Mutex
	seq      int
	messages []domain.ChatMessage
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{}
}

func (f *fakeChatRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	msg.ID = fmt.Sprintf("msg-%d", f.seq)
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeChatRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for i := range f.messages {
		if f.messages[i].TicketID == ticketID {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{handlers: make(map[events.EventType][]events.EventHandler)}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := d.handlers[event.Type]
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
