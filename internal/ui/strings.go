package ui

// User-facing strings, centralized so screens and tests agree on the
// exact wording.
const (
	StrLoadMore       = "Load More"
	StrNoResults      = "No Results Found"
	StrLoading        = "Loading..."
	StrFetchError     = "Error fetching notes"
	StrSaveSuccess    = "Note saved"
	StrPublishSuccess = "Note published"
	StrDeleteSuccess  = "Note deleted"
	StrDeleteError    = "Error deleting note"
	StrSaveError      = "Error saving note"
	StrLocationDenied = "Location permission denied - showing default region"
	StrNoNoteSelected = "No note selected"
	StrPrivateNotes   = "Private"
	StrPublishedNotes = "Published"
	StrGlobalOn       = "Global"
	StrGlobalOff      = "Mine"
	StrSearching      = "Search results"
)

// SortLabel names the active sort option in the status bar.
func SortLabel(s int) string {
	switch s {
	case 1:
		return "A-Z"
	case 2:
		return "Z-A"
	default:
		return "Recent"
	}
}
