package domain

import "time"

// TicketStatus enumerates lifecycle states for complaints.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusAssigned   TicketStatus = "Assigned"
	TicketStatusInProgress TicketStatus = "In-Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status ends SLA tracking.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// AcceptsFeedback reports whether the requester may attach feedback.
func (s TicketStatus) AcceptsFeedback() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// CountsTowardWorkload reports whether a ticket in this status occupies its assignee.
func (s TicketStatus) CountsTowardWorkload() bool {
	return s == TicketStatusAssigned || s == TicketStatusInProgress
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityUrgent TicketPriority = "Urgent"
)

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketCategory is the closed set of complaint categories.
type TicketCategory string

const (
	CategoryPlumbing   TicketCategory = "Plumbing"
	CategoryElectrical TicketCategory = "Electrical"
	CategoryFacility   TicketCategory = "Facility"
	CategoryIT         TicketCategory = "IT"
	CategoryOther      TicketCategory = "Other"
)

// Valid reports whether c is one of the known categories.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryPlumbing, CategoryElectrical, CategoryFacility, CategoryIT, CategoryOther:
		return true
	}
	return false
}

// Feedback is the requester's one-shot rating on a resolved complaint.
type Feedback struct {
	Rating      int
	Comment     string
	SubmittedAt time.Time
}

// Ticket is the aggregate root for the complaint lifecycle.
type Ticket struct {
	ID              string
	Code            string
	RequesterID     string
	Title           string
	Description     string
	Category        TicketCategory
	Status          TicketStatus
	AssigneeID      *string
	Priority        TicketPriority
	Escalated       bool
	SLADeadline     time.Time
	ResolutionNotes string
	Feedback        *Feedback
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Overdue reports whether the ticket's SLA has lapsed without reaching a terminal state.
func (t *Ticket) Overdue(now time.Time) bool {
	return !t.Status.Terminal() && !t.Escalated && t.SLADeadline.Before(now)
}
