package reconcile

// Status classifies what a batch pass did with one payload.
type Status string

const (
	// StatusCreated means a new catalog row was inserted for the payload.
	StatusCreated Status = "created"
	// StatusExisting means the payload converged on a row that was already
	// present.
	StatusExisting Status = "existing"
	// StatusSkipped means the payload could not be materialized this pass.
	StatusSkipped Status = "skipped"
)

// Outcome reports the per-item result of a batch pass. Callers can assert
// on outcomes instead of scraping logs.
type Outcome struct {
	TMDBID int64
	Status Status
	// Reason explains a skip. Empty for created and existing outcomes.
	Reason string
}
