package chat

// Mode selects the assistant's task type. The wire values are the
// single letters the backend expects.
type Mode string

const (
	// ModeSummarizer condenses one selected document.
	ModeSummarizer Mode = "A"
	// ModeClauseClassifier tags clauses in one selected document.
	ModeClauseClassifier Mode = "B"
	// ModeCaseLaw answers against case-law retrieval with filters
	// instead of a document (IRAC structure).
	ModeCaseLaw Mode = "C"
)

// Label returns the human-readable mode name.
func (m Mode) Label() string {
	switch m {
	case ModeSummarizer:
		return "Summarizer"
	case ModeClauseClassifier:
		return "Clause Classifier"
	case ModeCaseLaw:
		return "Case-Law IRAC"
	default:
		return "Unknown"
	}
}

// RequiresDocument reports whether the mode needs a selected document.
func (m Mode) RequiresDocument() bool {
	return m == ModeSummarizer || m == ModeClauseClassifier
}

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	return m == ModeSummarizer || m == ModeClauseClassifier || m == ModeCaseLaw
}
