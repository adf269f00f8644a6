package chat

// HistoryEntry is the role/content pair the backend expects as prior context
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildHistory converts completed turns into history entries. Failed,
// streaming and empty turns are skipped and images are never included.
func BuildHistory(turns []Turn) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(turns))
	for _, t := range turns {
		if t.Failed || t.Streaming || t.IsEmpty() {
			continue
		}
		history = append(history, HistoryEntry{Role: t.Role(), Content: t.Text})
	}
	return history
}
