package domain

// ExtractionChange is an observed transition of a document's extraction status.
type ExtractionChange struct {
	DocumentID string
	Previous   ExtractionStatus
	Current    ExtractionStatus
}

// Finished returns true if the change moved the document into a terminal state.
func (c ExtractionChange) Finished() bool {
	return !c.Previous.IsTerminal() && c.Current.IsTerminal()
}

// DiffExtraction compares two document lists and returns the extraction
// status changes in the order of after. Documents that appear only in
// after are compared against ExtractionNone.
func DiffExtraction(before, after []Document) []ExtractionChange {
	prev := make(map[string]ExtractionStatus, len(before))
	for i := range before {
		prev[before[i].ID] = before[i].CitationsExtractionStatus
	}
	var changes []ExtractionChange
	for i := range after {
		was := prev[after[i].ID]
		now := after[i].CitationsExtractionStatus
		if was != now {
			changes = append(changes, ExtractionChange{DocumentID: after[i].ID, Previous: was, Current: now})
		}
	}
	return changes
}
