package domain

// ExtractionStatus is the citation extraction state of a document or case.
// The zero value means no extraction was ever requested.
type ExtractionStatus string

// Extraction statuses.
const (
	ExtractionNone    ExtractionStatus = ""
	ExtractionQueued  ExtractionStatus = "QUEUED"
	ExtractionRunning ExtractionStatus = "RUNNING"
	ExtractionDone    ExtractionStatus = "DONE"
	ExtractionFailed  ExtractionStatus = "FAILED"
)

// IsValid returns true if the status is recognised, including ExtractionNone.
func (s ExtractionStatus) IsValid() bool {
	switch s {
	case ExtractionNone, ExtractionQueued, ExtractionRunning, ExtractionDone, ExtractionFailed:
		return true
	default:
		return false
	}
}

// InProgress returns true while an extraction is queued or running.
func (s ExtractionStatus) InProgress() bool {
	return s == ExtractionQueued || s == ExtractionRunning
}

// IsTerminal returns true once an extraction has finished.
func (s ExtractionStatus) IsTerminal() bool {
	return s == ExtractionDone || s == ExtractionFailed
}

// String returns the display form; ExtractionNone renders as "NONE".
func (s ExtractionStatus) String() string {
	if s == ExtractionNone {
		return "NONE"
	}
	return string(s)
}

// ParseExtractionStatus converts a wire value to a status.
// Empty strings and "NONE" map to ExtractionNone.
func ParseExtractionStatus(v string) (ExtractionStatus, error) {
	if v == "NONE" {
		return ExtractionNone, nil
	}
	s := ExtractionStatus(v)
	if !s.IsValid() {
		return ExtractionNone, invalid("citationsExtractionStatus", "is unknown: "+quote(v))
	}
	return s, nil
}

// AggregateExtractionStatus folds the statuses of a case's documents into one
// case-level status. Anything running makes the case running, then queued,
// then failed, then done.
func AggregateExtractionStatus(statuses []ExtractionStatus) ExtractionStatus {
	var queued, failed, done bool
	for _, s := range statuses {
		switch s {
		case ExtractionRunning:
			return ExtractionRunning
		case ExtractionQueued:
			queued = true
		case ExtractionFailed:
			failed = true
		case ExtractionDone:
			done = true
		}
	}
	switch {
	case queued:
		return ExtractionQueued
	case failed:
		return ExtractionFailed
	case done:
		return ExtractionDone
	default:
		return ExtractionNone
	}
}

// TargetKind selects what an extraction request covers.
type TargetKind string

// Target kinds.
const (
	TargetDocument TargetKind = "document"
	TargetCase     TargetKind = "case"
)

// ExtractionTarget names a document or a whole case.
type ExtractionTarget struct {
	Kind TargetKind
	ID   string
}

// DocumentTarget builds a target for a single document.
func DocumentTarget(id string) ExtractionTarget {
	return ExtractionTarget{Kind: TargetDocument, ID: id}
}

// CaseTarget builds a target for every document of a case.
func CaseTarget(id string) ExtractionTarget {
	return ExtractionTarget{Kind: TargetCase, ID: id}
}

// Validate checks the target kind and id.
func (t ExtractionTarget) Validate() error {
	if t.Kind != TargetDocument && t.Kind != TargetCase {
		return invalid("target", "kind must be document or case")
	}
	if t.ID == "" {
		return invalid("target", "id is required")
	}
	return nil
}

// String returns "kind:id".
func (t ExtractionTarget) String() string {
	return string(t.Kind) + ":" + t.ID
}
