package core

import (
	"time"

	"github.com/parlorchat/parlor-server/internal/store"
)

// HistoryEntry is one display payload in a history sequence, shaped by the
// message kind. Timestamp is rendered for display; the store keeps the
// machine-sortable instant.
type HistoryEntry struct {
	Kind      string `json:"kind"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// DisplayTime renders a stored instant in the display format used for
// transcripts and live events.
func DisplayTime(ts time.Time) string {
	return ts.Format(time.Kitchen)
}

// HistoryEntries maps store rows to display payloads: system notices carry
// bare text, actions merge actor and text into one line, whispers name both
// parties, plain text names the author.
func HistoryEntries(rows []*store.HistoryRow) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := HistoryEntry{
			Kind:      string(row.Kind),
			Text:      row.Body,
			Timestamp: DisplayTime(row.CreatedAt),
		}
		author := ""
		if row.AuthorName != nil {
			author = *row.AuthorName
		}

		switch row.Kind {
		case store.MessageSystem:
			// Bare text only.
		case store.MessageAction:
			entry.Text = author + " " + row.Body
		case store.MessageWhisper:
			entry.From = author
			if row.RecipientName != nil {
				entry.To = *row.RecipientName
			}
		default:
			entry.From = author
		}

		entries = append(entries, entry)
	}
	return entries
}
