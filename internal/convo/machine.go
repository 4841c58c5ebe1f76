package convo

import (
	"context"
	"errors"

	"github.com/quietdesk/guidechat/internal/chat"
	"github.com/quietdesk/guidechat/internal/form"
	"github.com/quietdesk/guidechat/internal/logger"
	"github.com/quietdesk/guidechat/internal/model"
	"github.com/quietdesk/guidechat/internal/turn"
)

var (
	ErrConversationDone = errors.New("conversation is complete")
	ErrNoPendingForm    = errors.New("no form is pending")
	ErrChoiceNotOffered = errors.New("choice not currently offered")
)

// Machine drives conversation transitions. One user action at a time per
// state; callers serialize.
type Machine struct {
	completer model.Completer
	log       *logger.Logger
}

func NewMachine(completer model.Completer, log *logger.Logger) *Machine {
	return &Machine{completer: completer, log: log.With("component", "convo")}
}

// Choose advances the conversation with a selected choice (a starter or a
// pill label).
func (m *Machine) Choose(ctx context.Context, st *State, systemPrompt, label string) error {
	return m.advance(ctx, st, systemPrompt, label)
}

// SubmitForm validates the submitted values against the pending form. On
// rejection the form stays pending and the returned *form.ValidationError
// lists the missing labels; nothing is sent to the model. On success the
// encoded submission becomes the user turn.
func (m *Machine) SubmitForm(ctx context.Context, st *State, systemPrompt string, values map[string]any) error {
	if st.PendingForm == nil {
		return ErrNoPendingForm
	}
	sub, verr := st.PendingForm.Validate(values)
	if verr != nil {
		return verr
	}
	return m.advance(ctx, st, systemPrompt, sub.EncodeContent())
}

// advance appends the user entry, calls the model, and applies the
// normalized turn. On a failed call the user entry stays appended and the
// pending affordances are left untouched, so a retry of the same action
// remains possible. The visible effect is a duplicated-looking turn
// boundary; accepted, not hidden.
func (m *Machine) advance(ctx context.Context, st *State, systemPrompt, userContent string) error {
	if st.Done {
		return ErrConversationDone
	}

	st.History = append(st.History, chat.User(userContent))

	raw, err := m.completer.Complete(ctx, systemPrompt, st.History)
	if err != nil {
		m.log.Warn("model call failed", "err", err)
		return err
	}

	m.apply(st, raw)
	return nil
}

func (m *Machine) apply(st *State, raw string) {
	obj, ok := turn.Extract(raw)
	if !ok {
		m.log.Warn("turn extraction failed, passing raw text through", "len", len(raw))
	}
	t := turn.Normalize(obj, raw)

	spec, warnings := form.Decode(t.RequestedForm)
	for _, w := range warnings {
		m.log.Warn("form field dropped", "reason", w)
	}

	st.History = append(st.History, chat.Assistant(t.MessageOrFallback()))
	st.PendingChoices = t.Choices
	st.PendingForm = spec
	st.Done = t.Final
}
