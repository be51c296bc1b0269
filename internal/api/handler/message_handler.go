package handler

import (
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MessageHandler struct {
	messageService *service.MessageService
	log            *zap.Logger
}

func NewMessageHandler(messageService *service.MessageService, log *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, log: log}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/student/message", h.sendTicket)
	r.Get("/student/messages/{studentId}", h.studentTickets)

	r.Post("/course-messages", h.post)
	r.Get("/course-messages/{offerId}", h.posts)
	r.Post("/messages", h.postLegacy)
	r.Get("/messages/{offerId}", h.posts)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Get("/admin/messages", h.allTickets)
		admin.Post("/admin/respond", h.respond)
	})
}

func (h *MessageHandler) sendTicket(w http.ResponseWriter, r *http.Request) {
	var req service.SendTicketRequest
	err := common.DecodeJSON(r, &req)
	if err == nil {
		err = selfOnly(r, int64(req.StudentID))
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	m, err := h.messageService.SendTicket(r.Context(), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Message: "Message sent", Data: m})
}

func (h *MessageHandler) studentTickets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "studentId")
	if err == nil {
		err = selfOrStaff(r, id)
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	msgs, err := h.messageService.StudentTickets(r.Context(), id)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "messages", msgs)
}

func (h *MessageHandler) allTickets(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messageService.AllTickets(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithKey(w, http.StatusOK, "messages", msgs)
}

func (h *MessageHandler) respond(w http.ResponseWriter, r *http.Request) {
	var req service.RespondRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	if err := h.messageService.Respond(r.Context(), req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "Response saved", nil)
}

func (h *MessageHandler) post(w http.ResponseWriter, r *http.Request) {
	var req service.PostRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	h.createPost(w, r, req)
}

// legacyPostRequest is the body shape older forum clients send.
type legacyPostRequest struct {
	OfferID    common.ID `json:"offer_id"`
	SenderID   common.ID `json:"sender_id"`
	Content    string    `json:"content"`
	SenderRole string    `json:"sender_role"`
}

func (h *MessageHandler) postLegacy(w http.ResponseWriter, r *http.Request) {
	var req legacyPostRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	h.createPost(w, r, service.PostRequest{
		OfferID:    req.OfferID,
		UserID:     req.SenderID,
		Message:    req.Content,
		SenderRole: req.SenderRole,
	})
}

func (h *MessageHandler) createPost(w http.ResponseWriter, r *http.Request, req service.PostRequest) {
	m, err := h.messageService.Post(r.Context(), actor(r), req)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.Envelope{Success: true, Data: m})
}

func (h *MessageHandler) posts(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerId")
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	msgs, err := h.messageService.Posts(r.Context(), offerID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	common.RespondOK(w, "", msgs)
}
