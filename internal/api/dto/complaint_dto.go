package dto

import (
	"time"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// FeedbackRequest is the requester's rating patch.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateComplaintRequest is the sparse update payload; omitted fields are untouched.
type UpdateComplaintRequest struct {
	Status          *domain.TicketStatus `json:"status"`
	AssignedTo      *string              `json:"assignedTo"`
	ResolutionNotes *string              `json:"resolutionNotes"`
	Feedback        *FeedbackRequest     `json:"feedback"`
}

// FeedbackResponse mirrors stored feedback.
type FeedbackResponse struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ComplaintResponse provides full complaint info.
type ComplaintResponse struct {
	ID              string                `json:"id"`
	Code            string                `json:"code"`
	RequesterID     string                `json:"requester_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        domain.TicketCategory `json:"category"`
	Status          domain.TicketStatus   `json:"status"`
	AssignedTo      *string               `json:"assignedTo"`
	Priority        domain.TicketPriority `json:"priority"`
	Escalated       bool                  `json:"escalated"`
	SLADeadline     time.Time             `json:"sla_deadline"`
	ResolutionNotes string                `json:"resolution_notes"`
	Feedback        *FeedbackResponse     `json:"feedback,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewComplaintResponse maps a ticket.
func NewComplaintResponse(ticket *domain.Ticket) ComplaintResponse {
	resp := ComplaintResponse{
		ID:              ticket.ID,
		Code:            ticket.Code,
		RequesterID:     ticket.RequesterID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Category:        ticket.Category,
		Status:          ticket.Status,
		AssignedTo:      ticket.AssigneeID,
		Priority:        ticket.Priority,
		Escalated:       ticket.Escalated,
		SLADeadline:     ticket.SLADeadline,
		ResolutionNotes: ticket.ResolutionNotes,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
	if ticket.Feedback != nil {
		resp.Feedback = &FeedbackResponse{
			Rating:      ticket.Feedback.Rating,
			Comment:     ticket.Feedback.Comment,
			SubmittedAt: ticket.Feedback.SubmittedAt,
		}
	}
	return resp
}

// SendMessageRequest payload for ticket chat.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// ChatMessageResponse represents one chat entry.
type ChatMessageResponse struct {
	ID         string      `json:"id"`
	TicketID   string      `json:"ticket_id"`
	SenderID   string      `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	SenderRole domain.Role `json:"sender_role"`
	Text       string      `json:"text"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewChatMessageResponse maps a chat message.
func NewChatMessageResponse(msg *domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         msg.ID,
		TicketID:   msg.TicketID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		SenderRole: msg.SenderRole,
		Text:       msg.Text,
		CreatedAt:  msg.CreatedAt,
	}
}
