package memory

import "fmt"

// Roles a conversation entry can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable entry of the conversation log.
type Message struct {
	Role string
	Text string
}

// Conversation is the ordered log of completed turns. It lives for the
// process lifetime and has exactly one writer (the turn executor), so no
// locking discipline is needed; readers take a Snapshot at turn start.
type Conversation struct {
	msgs []Message
}

func New() *Conversation {
	return &Conversation{}
}

// AppendUser opens a turn. Turns strictly alternate, so appending a user
// message while one is already unanswered is a programming error.
func (c *Conversation) AppendUser(text string) error {
	if n := len(c.msgs); n > 0 && c.msgs[n-1].Role == RoleUser {
		return fmt.Errorf("conversation: user message already awaiting an assistant reply")
	}
	c.msgs = append(c.msgs, Message{Role: RoleUser, Text: text})
	return nil
}

// AppendAssistant closes the open turn.
func (c *Conversation) AppendAssistant(text string) error {
	n := len(c.msgs)
	if n == 0 || c.msgs[n-1].Role != RoleUser {
		return fmt.Errorf("conversation: no open turn to answer")
	}
	c.msgs = append(c.msgs, Message{Role: RoleAssistant, Text: text})
	return nil
}

func (c *Conversation) Len() int {
	return len(c.msgs)
}

// Snapshot returns a copy of the log for the model request builder.
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}
