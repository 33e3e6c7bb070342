package session

import "fmt"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleAssistant Role = "assistant"
)

type Entry struct {
	Role Role
	Text string
}

// String renders the entry the way it is shown in the chat history.
func (e Entry) String() string {
	if e.Role == RoleCandidate {
		return fmt.Sprintf("Candidate: %s", e.Text)
	}
	return e.Text
}

// Transcript is append-only.
type Transcript struct {
	entries []Entry
}

func (t *Transcript) Append(role Role, text string) {
	t.entries = append(t.entries, Entry{Role: role, Text: text})
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

func (t *Transcript) Entries() []Entry {
	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

func (t *Transcript) Lines() []string {
	lines := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		lines = append(lines, e.String())
	}
	return lines
}
