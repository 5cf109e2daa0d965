package domain

import "time"

const (
	MessageTimestampLayout = "2006-01-02 15:04:05"
	SelfLabel              = "You"
)

type Message struct {
	Sender    string
	Body      string
	Timestamp string
}

type OutgoingMessage struct {
	Body      string
	Timestamp string
}

func NewOutgoingMessage(body string, now time.Time) OutgoingMessage {
	return OutgoingMessage{Body: body, Timestamp: now.Format(MessageTimestampLayout)}
}

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

type MessageLine struct {
	Side      Side   `json:"side"`
	Label     string `json:"label"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AlignMessages projects a thread for display, keeping server order. A message
// is self-authored only when selfID is non-empty and equals its sender.
func AlignMessages(messages []Message, selfID, otherLabel string) []MessageLine {
	lines := make([]MessageLine, 0, len(messages))
	for _, msg := range messages {
		line := MessageLine{Side: SideLeft, Label: otherLabel, Body: msg.Body, Timestamp: msg.Timestamp}
		if selfID != "" && msg.Sender == selfID {
			line.Side = SideRight
			line.Label = SelfLabel
		}
		lines = append(lines, line)
	}
	return lines
}
