// Package projection builds render directives from domain data.
// Pure functions only: no events, no IO, nothing incremental.
package projection

import (
	"time"

	"chat-sync/domain"

	"github.com/samber/lo"
)

// GroupingGap is the silence after which a new grouping run starts.
const GroupingGap = 60 * time.Second

// DisplayFlags tells a renderer whether a message opens a run (timestamp
// header at the top) or closes one (sender avatar at the bottom).
type DisplayFlags struct {
	ShowHeader bool
	ShowAvatar bool
}

// Group computes per-message display flags for a total-ordered list.
// Consecutive messages from the same sender within GroupingGap form one
// visual turn: the header shows once, the avatar once. A gap of exactly
// GroupingGap starts a new run.
func Group(messages []domain.Message) []DisplayFlags {
	return lo.Map(messages, func(m domain.Message, i int) DisplayFlags {
		flags := DisplayFlags{ShowHeader: true, ShowAvatar: true}
		if i > 0 {
			prev := messages[i-1]
			flags.ShowHeader = prev.SenderID != m.SenderID ||
				m.SentAt.Sub(prev.SentAt) >= GroupingGap
		}
		if i < len(messages)-1 {
			next := messages[i+1]
			flags.ShowAvatar = next.SenderID != m.SenderID ||
				next.SentAt.Sub(m.SentAt) >= GroupingGap
		}
		return flags
	})
}
