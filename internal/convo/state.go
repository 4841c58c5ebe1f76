package convo

import (
	"slices"

	"github.com/quietdesk/guidechat/internal/chat"
	"github.com/quietdesk/guidechat/internal/form"
)

// State is the whole conversation: history plus the affordances currently on
// offer. It is owned by one session and mutated only through the Machine (or
// Reset). No ambient globals.
type State struct {
	History        []chat.Message
	PendingChoices []string
	PendingForm    *form.Spec
	Done           bool
	TermsAccepted  bool
}

// NewState seeds a conversation with the assistant greeting as its only
// entry.
func NewState(greeting string) *State {
	return &State{History: []chat.Message{chat.Assistant(greeting)}}
}

// Reset clears everything, terms acceptance included, returning the
// conversation to its initial greeting-only state.
func (s *State) Reset(greeting string) {
	*s = *NewState(greeting)
}

// Affordance is the single interactive control eligible for user input.
type Affordance string

const (
	AffordanceStarters Affordance = "starters"
	AffordanceChoices  Affordance = "choices"
	AffordanceForm     Affordance = "form"
	AffordanceNone     Affordance = "none"
)

// Active picks the one interactable affordance for the current render.
// Priority: starters (only while the history is just the greeting) over
// choice pills over the form. Completion suppresses choices and form
// regardless of their stored values.
func (s *State) Active(starters []string) Affordance {
	if len(s.History) == 1 && len(starters) > 0 {
		return AffordanceStarters
	}
	if !s.Done && len(s.PendingChoices) > 0 {
		return AffordanceChoices
	}
	if !s.Done && s.PendingForm != nil {
		return AffordanceForm
	}
	return AffordanceNone
}

// ChoiceAllowed reports whether label is a legal choice transition right
// now: one of the starters or pending pills while those are the active
// affordance, or — after a failed model call left a user entry dangling with
// nothing pending — a re-send of that same entry. Anything else is free
// text and has no place in a guided conversation.
func (s *State) ChoiceAllowed(starters []string, label string) bool {
	switch s.Active(starters) {
	case AffordanceStarters:
		return slices.Contains(starters, label)
	case AffordanceChoices:
		return slices.Contains(s.PendingChoices, label)
	case AffordanceForm:
		return false
	default:
		if s.Done {
			return false
		}
		last := s.History[len(s.History)-1]
		return last.Role == chat.RoleUser && last.Content == label
	}
}
