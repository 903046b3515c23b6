package driver

// Status reports where a file is in the analysis pipeline.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusChecking Status = "checking"
	StatusClean    Status = "clean"
	StatusIssues   Status = "issues"
	StatusError    Status = "error"
)

// Event is one progress update for a file, consumed by the progress UI.
type Event struct {
	Path   string
	Status Status
	Issues int
}

func emit(events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	events <- ev
}
