package server

import (
	"github.com/quietdesk/guidechat/internal/chat"
	"github.com/quietdesk/guidechat/internal/config"
	"github.com/quietdesk/guidechat/internal/convo"
	"github.com/quietdesk/guidechat/internal/form"
)

// messageView is one history entry as rendered to the client. When the entry
// is a tagged form submission, Submission carries the decoded field values
// for friendly rendering; Content keeps the raw text for the disclosure
// fallback either way.
type messageView struct {
	Role       chat.Role       `json:"role"`
	Content    string          `json:"content"`
	Submission form.Submission `json:"submission,omitempty"`
}

// sessionView is the consistent snapshot the client renders from. Only the
// active affordance's data is populated, so the client cannot show two
// interactable controls at once.
type sessionView struct {
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	TermsText     string           `json:"terms_text,omitempty"`
	TermsAccepted bool             `json:"terms_accepted"`
	Messages      []messageView    `json:"messages"`
	Affordance    convo.Affordance `json:"affordance"`
	Starters      []string         `json:"starters,omitempty"`
	Choices       []string         `json:"choices,omitempty"`
	Form          *form.Spec       `json:"form,omitempty"`
	Done          bool             `json:"done"`
	Error         string           `json:"error,omitempty"`
}

func buildView(st *convo.State, deck config.Copy, errMsg string) sessionView {
	v := sessionView{
		Title:         deck.Title,
		Description:   deck.Description,
		TermsText:     deck.TermsText,
		TermsAccepted: st.TermsAccepted,
		Messages:      make([]messageView, 0, len(st.History)),
		Affordance:    st.Active(deck.Starters),
		Done:          st.Done,
		Error:         errMsg,
	}

	for _, m := range st.History {
		mv := messageView{Role: m.Role, Content: m.Content}
		if m.Role == chat.RoleUser {
			if sub, ok := form.DecodeSubmissionContent(m.Content); ok {
				mv.Submission = sub
			}
		}
		v.Messages = append(v.Messages, mv)
	}

	switch v.Affordance {
	case convo.AffordanceStarters:
		v.Starters = deck.Starters
	case convo.AffordanceChoices:
		v.Choices = st.PendingChoices
	case convo.AffordanceForm:
		v.Form = st.PendingForm
	}

	return v
}
