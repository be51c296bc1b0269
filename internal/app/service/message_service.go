package service

import (
	"context"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
}

func NewMessageService(messageRepo repository.MessageRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

type SendTicketRequest struct {
	StudentID common.ID `json:"studentId" validate:"required,gt=0"`
	Message   string    `json:"message" validate:"required"`
}

type RespondRequest struct {
	MessageID common.ID `json:"messageId" validate:"required,gt=0"`
	Response  string    `json:"response" validate:"required"`
}

// PostRequest is a forum post. Author and role come from the caller;
// UserID and SenderRole, when sent, must agree with them.
type PostRequest struct {
	OfferID    common.ID `json:"offer_id" validate:"required,gt=0"`
	UserID     common.ID `json:"user_id" validate:"omitempty,gt=0"`
	Message    string    `json:"message" validate:"required"`
	SenderRole string    `json:"sender_role" validate:"omitempty,oneof=student lecturer admin"`
}

func (s *MessageService) SendTicket(ctx context.Context, req SendTicketRequest) (*model.StudentMessage, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	m := &model.StudentMessage{StudentID: int64(req.StudentID), Message: req.Message}
	if err := s.messageRepo.CreateTicket(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) StudentTickets(ctx context.Context, studentID int64) ([]model.StudentMessage, error) {
	return s.messageRepo.ListTicketsByStudent(ctx, studentID)
}

func (s *MessageService) AllTickets(ctx context.Context) ([]model.TicketView, error) {
	return s.messageRepo.ListAllTickets(ctx)
}

// Respond answers a ticket. A ticket is answered at most once.
func (s *MessageService) Respond(ctx context.Context, req RespondRequest) error {
	if err := common.Validate(req); err != nil {
		return err
	}
	return s.messageRepo.RespondTicket(ctx, int64(req.MessageID), req.Response)
}

func (s *MessageService) Post(ctx context.Context, actor Actor, req PostRequest) (*model.CourseMessage, error) {
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if req.UserID != 0 && int64(req.UserID) != actor.ID {
		return nil, fmt.Errorf("cannot post as user %d: %w", req.UserID, common.ErrForbidden)
	}
	role := actor.Role
	if req.SenderRole != "" && req.SenderRole != actor.Role {
		return nil, common.NewValidationError("sender_role does not match the caller",
			common.FieldError{Field: "sender_role", Error: "mismatch"})
	}
	m := &model.CourseMessage{OfferID: int64(req.OfferID), UserID: actor.ID, Message: req.Message, SenderRole: role}
	if err := s.messageRepo.CreatePost(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) Posts(ctx context.Context, offerID int64) ([]model.CourseMessage, error) {
	return s.messageRepo.ListPosts(ctx, offerID)
}
