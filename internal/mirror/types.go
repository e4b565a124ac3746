package mirror

// BranchStatus classifies the outcome of synchronizing a single branch.
type BranchStatus string

// Branch synchronization outcomes.
const (
	BranchStatusNew     BranchStatus = "new"
	BranchStatusUpdated BranchStatus = "updated"
	BranchStatusFailed  BranchStatus = "failed"
)

// BranchRecord captures the outcome of one branch during synchronization.
type BranchRecord struct {
	Name    string
	Status  BranchStatus
	Message string
}

// ProcessingResult reports the outcome of synchronizing one repository.
type ProcessingResult struct {
	Reference      string
	DirectoryName  string
	Succeeded      bool
	FailureMessage string
	Branches       []BranchRecord
}

// BatchSummary aggregates the outcomes of one batch run.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Results   []ProcessingResult
}

func countBranchesWithStatus(records []BranchRecord, status BranchStatus) int {
	matchingCount := 0
	for _, record := range records {
		if record.Status == status {
			matchingCount++
		}
	}
	return matchingCount
}
