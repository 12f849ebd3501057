package model

// EntryKind distinguishes the two kinds of rows a share listing produces.
type EntryKind int

const (
	// KindContainer is a folder-like entry that can be opened and listed.
	KindContainer EntryKind = iota

	// KindLeaf is a file-like entry that can be previewed but not entered.
	KindLeaf
)

// String returns a human-readable name for the entry kind.
func (k EntryKind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}
