package messaging

import (
	"context"

	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/models"
	"github.com/sirupsen/logrus"
)

// UnreadCount counts messages addressed to userID that are not read.
func UnreadCount(msgs []models.Message, userID string) int {
	if userID == "" {
		return 0
	}
	n := 0
	for _, m := range msgs {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n
}

// Tracker follows a user's unread count through a live query.
type Tracker struct {
	store docstore.Store
	log   logrus.FieldLogger
}

func NewTracker(store docstore.Store, log logrus.FieldLogger) *Tracker {
	return &Tracker{store: store, log: logger.Component(log, "unread")}
}

func unreadQuery(userID string) docstore.Query {
	return docstore.Query{
		Collection: docstore.Messages,
		Filters:    []docstore.Filter{docstore.Where("receiverId", userID)},
	}
}

// Count is a one-shot unread count. Errors leave the count at zero.
func (t *Tracker) Count(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	docs, err := t.store.Find(ctx, unreadQuery(userID))
	if err != nil {
		return 0, err
	}
	return UnreadCount(fromDocuments(docs), userID), nil
}

// Run calls fn with the unread count on every change to userID's messages until ctx ends.
// Without a user, or when the subscription fails, fn receives 0 and Run returns.
func (t *Tracker) Run(ctx context.Context, userID string, fn func(unread int)) error {
	if userID == "" {
		fn(0)
		return nil
	}
	snaps, err := t.store.Watch(ctx, unreadQuery(userID))
	if err != nil {
		t.log.WithError(err).WithField("user", userID).Warn("unread subscription failed")
		fn(0)
		return err
	}
	for snap := range snaps {
		if snap.Err != nil {
			t.log.WithError(snap.Err).WithField("user", userID).Warn("unread subscription ended")
			fn(0)
			return snap.Err
		}
		n := UnreadCount(fromDocuments(snap.Docs), userID)
		t.log.WithFields(logrus.Fields{"user": userID, "unread": n}).Debug("unread count updated")
		fn(n)
	}
	return ctx.Err()
}
