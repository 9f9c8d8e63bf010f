package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	"github.com/localmart/localmart-backend-go/metrics"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingFields = errors.New("name, email, subject and message are required")
	ErrInvalidEmail  = errors.New("invalid email address")
)

type ContactRequest struct {
	UserID   string `json:"userId,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

type ContactResult struct {
	ComplaintID string `json:"complaintId"`
	MessageID   string `json:"messageId"`
}

// ContactService files support requests as a message to the support user and an
// admin_complaints document.
type ContactService struct {
	store         docstore.Store
	messages      *messaging.Service
	supportUserID string
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewContactService(store docstore.Store, messages *messaging.Service, supportUserID string, log logrus.FieldLogger) *ContactService {
	return &ContactService{
		store:         store,
		messages:      messages,
		supportUserID: supportUserID,
		log:           logger.Component(log, "helpcenter"),
		now:           time.Now,
	}
}

func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (ContactResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		return ContactResult{}, ErrMissingFields
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return ContactResult{}, ErrInvalidEmail
	}
	if req.Category == "" {
		req.Category = "general"
	}

	now := s.now().UTC()
	sender := req.UserID
	if sender == "" {
		sender = "guest:" + strings.ToLower(req.Email)
	}
	supportData := map[string]any{
		"name":     req.Name,
		"email":    req.Email,
		"subject":  req.Subject,
		"category": req.Category,
		"status":   "open",
	}
	msg, err := s.messages.Send(ctx, models.Message{
		SenderID:    sender,
		SenderName:  req.Name,
		ReceiverID:  s.supportUserID,
		Message:     fmt.Sprintf("Support request: %s\n\n%s\n\nFrom: %s <%s>", req.Subject, req.Message, req.Name, req.Email),
		MessageType: models.MessageTypeSupportRequest,
		Timestamp:   now,
		SupportData: supportData,
	})
	if err != nil {
		return ContactResult{}, err
	}

	id, err := s.store.Add(ctx, docstore.AdminComplaints, docstore.Document{
		"userId":    req.UserID,
		"name":      req.Name,
		"email":     req.Email,
		"subject":   req.Subject,
		"category":  req.Category,
		"message":   req.Message,
		"messageId": msg.ID,
		"status":    "open",
		"createdAt": now,
	})
	if err != nil {
		return ContactResult{}, fmt.Errorf("store complaint: %w", err)
	}
	metrics.SupportRequests.Inc()
	s.log.WithFields(logrus.Fields{"complaint": id, "category": req.Category}).Info("support request filed")
	return ContactResult{ComplaintID: id, MessageID: msg.ID}, nil
}
