// Package messaging stores chat messages between buyers, sellers and support, and tracks
// unread counts for live clients.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidMessage = errors.New("sender, receiver and message are required")
	ErrForbidden      = errors.New("message belongs to another user")
	ErrNotFound       = errors.New("message not found")
)

const defaultLimit = 100

type Service struct {
	store docstore.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store docstore.Store, log logrus.FieldLogger) *Service {
	return &Service{
		store: store,
		log:   logger.Component(log, "messaging"),
		now:   time.Now,
	}
}

// Send stores m and returns it with its id. Timestamp and conversation id are filled in
// when absent.
func (s *Service) Send(ctx context.Context, m models.Message) (models.Message, error) {
	if m.SenderID == "" || m.ReceiverID == "" || strings.TrimSpace(m.Message) == "" {
		return models.Message{}, ErrInvalidMessage
	}
	if m.MessageType == "" {
		m.MessageType = models.MessageTypeText
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}
	if m.ConversationID == "" {
		m.ConversationID = models.ConversationID(m.SenderID, m.ReceiverID)
	}
	m.IsRead = false

	id, err := s.store.Add(ctx, docstore.Messages, m.Document())
	if err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}
	m.ID = id
	s.log.WithFields(logrus.Fields{
		"id":   id,
		"from": m.SenderID,
		"to":   m.ReceiverID,
		"type": m.MessageType,
	}).Info("message sent")
	return m, nil
}

// Conversation returns the latest messages between a and b, oldest first.
func (s *Service) Conversation(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	docs, err := s.store.Find(ctx, docstore.Query{
		Collection: docstore.Messages,
		Filters:    []docstore.Filter{docstore.Where("conversationId", models.ConversationID(a, b))},
		OrderBy:    "timestamp",
		Desc:       true,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	msgs := make([]models.Message, len(docs))
	for i, d := range docs {
		msgs[len(docs)-1-i] = models.MessageFromDocument(d)
	}
	return msgs, nil
}

// Inbox returns messages addressed to userID, newest first.
func (s *Service) Inbox(ctx context.Context, userID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	docs, err := s.store.Find(ctx, inboxQuery(userID, limit))
	if err != nil {
		return nil, fmt.Errorf("load inbox: %w", err)
	}
	return fromDocuments(docs), nil
}

// MarkRead flags a message read. Only its receiver may do so.
func (s *Service) MarkRead(ctx context.Context, userID, messageID string) error {
	doc, err := s.store.Get(ctx, docstore.Messages, messageID)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load message: %w", err)
	}
	if docstore.String(doc, "receiverId") != userID {
		return ErrForbidden
	}
	return s.store.Update(ctx, docstore.Messages, messageID, docstore.Document{
		"isRead": true,
		"readAt": s.now().UTC(),
	})
}

// MarkConversationRead flags every unread message from otherID to userID and reports how
// many were changed.
func (s *Service) MarkConversationRead(ctx context.Context, userID, otherID string) (int, error) {
	docs, err := s.store.Find(ctx, docstore.Query{
		Collection: docstore.Messages,
		Filters: []docstore.Filter{
			docstore.Where("receiverId", userID),
			docstore.Where("senderId", otherID),
		},
	})
	if err != nil {
		return 0, fmt.Errorf("load conversation: %w", err)
	}
	n := 0
	now := s.now().UTC()
	for _, d := range docs {
		if docstore.Bool(d, "isRead") {
			continue
		}
		if err := s.store.Update(ctx, docstore.Messages, d.ID(), docstore.Document{"isRead": true, "readAt": now}); err != nil {
			return n, fmt.Errorf("mark read: %w", err)
		}
		n++
	}
	return n, nil
}

func inboxQuery(userID string, limit int) docstore.Query {
	return docstore.Query{
		Collection: docstore.Messages,
		Filters:    []docstore.Filter{docstore.Where("receiverId", userID)},
		OrderBy:    "timestamp",
		Desc:       true,
		Limit:      limit,
	}
}

func fromDocuments(docs []docstore.Document) []models.Message {
	msgs := make([]models.Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, models.MessageFromDocument(d))
	}
	return msgs
}
