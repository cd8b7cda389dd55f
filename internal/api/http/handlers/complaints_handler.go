package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/dto"
	"github.com/kaveyan18/resolve-desk/internal/auth"
	"github.com/kaveyan18/resolve-desk/internal/service"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// ComplaintsHandler exposes the complaint lifecycle endpoints.
type ComplaintsHandler struct {
	lifecycle *service.LifecycleService
	chat      *service.ChatService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(lifecycle *service.LifecycleService, chat *service.ChatService) *ComplaintsHandler {
	return &ComplaintsHandler{lifecycle: lifecycle, chat: chat}
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.lifecycle.CreateTicket(c.UserContext(), principal.User, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(ticket)})
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	tickets, err := h.lifecycle.ListTickets(c.UserContext(), principal.User, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewComplaintResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "data": items})
}

// Get GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.lifecycle.GetTicket(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(ticket)})
}

// Track GET /api/complaints/track/:code.
func (h *ComplaintsHandler) Track(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.lifecycle.GetTicketByCode(c.UserContext(), principal.User, c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(ticket)})
}

// Update PUT /api/complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.TicketPatch{
		Status:          req.Status,
		AssigneeID:      req.AssignedTo,
		ResolutionNotes: req.ResolutionNotes,
	}
	if req.Feedback != nil {
		patch.Feedback = &service.FeedbackInput{
			Rating:  req.Feedback.Rating,
			Comment: req.Feedback.Comment,
		}
	}

	ticket, err := h.lifecycle.ApplyUpdate(c.UserContext(), principal.User, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(ticket)})
}

// ListMessages GET /api/complaints/:id/messages.
func (h *ComplaintsHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	// Room access mirrors complaint visibility.
	if _, err := h.lifecycle.GetTicket(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	msgs, err := h.chat.ListMessages(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.NewChatMessageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "data": items})
}

// SendMessage POST /api/complaints/:id/messages.
func (h *ComplaintsHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.lifecycle.GetTicket(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	msg, err := h.chat.SendMessage(c.UserContext(), c.Params("id"), principal.User.ID, req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewChatMessageResponse(msg)})
}
