package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/models"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Handler) SendMessage(c echo.Context) error {
	var req struct {
		ReceiverID   string `json:"receiverId"`
		ReceiverName string `json:"receiverName"`
		SenderName   string `json:"senderName"`
		Message      string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request format")
	}

	msg, err := h.Messages.Send(c.Request().Context(), models.Message{
		SenderID:     middleware.UserID(c),
		SenderName:   req.SenderName,
		ReceiverID:   req.ReceiverID,
		ReceiverName: req.ReceiverName,
		Message:      req.Message,
		Text:         req.Message,
		MessageType:  models.MessageTypeText,
	})
	if err != nil {
		return h.fail(c, err, "Failed to send message")
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) Inbox(c echo.Context) error {
	msgs, err := h.Messages.Inbox(c.Request().Context(), middleware.UserID(c), limitParam(c))
	if err != nil {
		return h.fail(c, err, "Failed to load messages")
	}
	return c.JSON(http.StatusOK, nonNil(msgs))
}

func (h *Handler) Conversation(c echo.Context) error {
	msgs, err := h.Messages.Conversation(c.Request().Context(), middleware.UserID(c), c.Param("otherId"), limitParam(c))
	if err != nil {
		return h.fail(c, err, "Failed to load conversation")
	}
	return c.JSON(http.StatusOK, nonNil(msgs))
}

func (h *Handler) MarkRead(c echo.Context) error {
	if err := h.Messages.MarkRead(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return h.fail(c, err, "Failed to update message")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Message marked as read"})
}

func (h *Handler) MarkConversationRead(c echo.Context) error {
	n, err := h.Messages.MarkConversationRead(c.Request().Context(), middleware.UserID(c), c.Param("otherId"))
	if err != nil {
		return h.fail(c, err, "Failed to update messages")
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": n})
}

// UnreadCount fails closed: a lookup error reports zero.
func (h *Handler) UnreadCount(c echo.Context) error {
	userID := middleware.UserID(c)
	n, err := h.Unread.Count(c.Request().Context(), userID)
	if err != nil {
		h.log().WithError(err).WithField("user", userID).Warn("unread count failed")
		n = 0
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": n})
}

// UnreadFeed upgrades to a websocket and pushes {"unread": n} on every change.
func (h *Handler) UnreadFeed(c echo.Context) error {
	userID := middleware.UserID(c)
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log().WithError(err).Warn("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends; reading only notices the disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.Unread.Run(ctx, userID, func(unread int) {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(map[string]int{"unread": unread}); err != nil {
			cancel()
		}
	})
	if err != nil && ctx.Err() == nil {
		h.log().WithError(err).WithField("user", userID).Warn("unread feed ended")
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return nil
}

func limitParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}
