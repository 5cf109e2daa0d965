package application

import (
	"context"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

// MessageThread is the messages panel for one counterpart, seen from self.
type MessageThread struct {
	api         ports.MessageAPI
	clock       ports.Clock
	counterpart string
	selfID      string
	otherLabel  string
	panel       *Panel[domain.Message]
}

func NewMessageThread(api ports.MessageAPI, clock ports.Clock, counterpart string, self domain.Identity, otherLabel string) *MessageThread {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	source := ports.SourceFunc[domain.Message](func(ctx context.Context) ([]domain.Message, error) {
		return api.ListMessages(ctx, counterpart)
	})
	return &MessageThread{
		api:         api,
		clock:       clock,
		counterpart: counterpart,
		selfID:      self.ID,
		otherLabel:  otherLabel,
		panel:       NewPanel[domain.Message](source, domain.MsgLoadMessages),
	}
}

func (t *MessageThread) Counterpart() string {
	return t.counterpart
}

func (t *MessageThread) Load(ctx context.Context) PanelSnapshot[domain.Message] {
	return t.panel.Fetch(ctx)
}

func (t *MessageThread) Reload(ctx context.Context, token uint64) (PanelSnapshot[domain.Message], bool) {
	return t.panel.Reload(ctx, token)
}

func (t *MessageThread) Send(ctx context.Context, body string) (PanelSnapshot[domain.Message], error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return t.panel.Snapshot(), domain.NewValidationError(domain.MsgEmptyMessage)
	}
	msg := domain.NewOutgoingMessage(body, t.clock.Now())
	return t.panel.Mutate(ctx, func(ctx context.Context) error {
		return t.api.SendMessage(ctx, t.counterpart, msg)
	}, domain.MsgSendMessage)
}

func (t *MessageThread) Snapshot() PanelSnapshot[domain.Message] {
	return t.panel.Snapshot()
}

func (t *MessageThread) Lines() []domain.MessageLine {
	return domain.AlignMessages(t.panel.Snapshot().Items, t.selfID, t.otherLabel)
}

func (t *MessageThread) Close() {
	t.panel.Close()
}
