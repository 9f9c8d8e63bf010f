package models

import (
	"time"

	"github.com/localmart/localmart-backend-go/docstore"
)

type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeOrderRequest   MessageType = "order_request"
	MessageTypeSupportRequest MessageType = "support_request"
	MessageTypeReceipt        MessageType = "receipt"
	MessageTypeRefundReceipt  MessageType = "refund_receipt"
)

// Message is a document in the messages collection. Text mirrors Message for older readers.
type Message struct {
	ID             string         `json:"id"`
	SenderID       string         `json:"senderId"`
	SenderName     string         `json:"senderName,omitempty"`
	ReceiverID     string         `json:"receiverId"`
	ReceiverName   string         `json:"receiverName,omitempty"`
	ConversationID string         `json:"conversationId"`
	Message        string         `json:"message"`
	Text           string         `json:"text,omitempty"`
	MessageType    MessageType    `json:"messageType"`
	Timestamp      time.Time      `json:"timestamp"`
	IsRead         bool           `json:"isRead"`
	OrderData      map[string]any `json:"orderData,omitempty"`
	ReceiptData    map[string]any `json:"receiptData,omitempty"`
	SupportData    map[string]any `json:"supportData,omitempty"`
}

// ConversationID is stable for a pair of users regardless of who sends.
func ConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

func (m Message) Document() docstore.Document {
	doc := docstore.Document{
		"senderId":       m.SenderID,
		"senderName":     m.SenderName,
		"receiverId":     m.ReceiverID,
		"receiverName":   m.ReceiverName,
		"conversationId": m.ConversationID,
		"message":        m.Message,
		"messageType":    string(m.MessageType),
		"timestamp":      m.Timestamp,
		"isRead":         m.IsRead,
	}
	if m.Text != "" {
		doc["text"] = m.Text
	}
	if m.OrderData != nil {
		doc["orderData"] = m.OrderData
	}
	if m.ReceiptData != nil {
		doc["receiptData"] = m.ReceiptData
	}
	if m.SupportData != nil {
		doc["supportData"] = m.SupportData
	}
	return doc
}

func MessageFromDocument(doc docstore.Document) Message {
	m := Message{
		ID:             doc.ID(),
		SenderID:       docstore.String(doc, "senderId"),
		SenderName:     docstore.String(doc, "senderName"),
		ReceiverID:     docstore.String(doc, "receiverId"),
		ReceiverName:   docstore.String(doc, "receiverName"),
		ConversationID: docstore.String(doc, "conversationId"),
		Message:        docstore.String(doc, "message", "text"),
		Text:           docstore.String(doc, "text"),
		MessageType:    MessageType(docstore.String(doc, "messageType", "type")),
		IsRead:         docstore.Bool(doc, "isRead"),
		OrderData:      docstore.Map(doc, "orderData"),
		ReceiptData:    docstore.Map(doc, "receiptData"),
		SupportData:    docstore.Map(doc, "supportData"),
	}
	if m.MessageType == "" {
		m.MessageType = MessageTypeText
	}
	if m.ConversationID == "" && m.SenderID != "" && m.ReceiverID != "" {
		m.ConversationID = ConversationID(m.SenderID, m.ReceiverID)
	}
	m.Timestamp, _ = docstore.Time(doc, "timestamp", "createdAt")
	return m
}
