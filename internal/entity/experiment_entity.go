package entity

type ExperimentStatus string

const (
	ExperimentStatusPlanned    ExperimentStatus = "planned"
	ExperimentStatusInProgress ExperimentStatus = "in_progress"
	ExperimentStatusCompleted  ExperimentStatus = "completed"
	ExperimentStatusFailed     ExperimentStatus = "failed"
)

// Experiment is a structured notebook entry with ordered procedural steps
// and file attachments. Status transitions are not guarded client-side:
// the server accepts any status at any time and we mirror whatever it
// acknowledges.
type Experiment struct {
	Id          string                 `json:"id"`
	UserId      string                 `json:"user_id"`
	Title       string                 `json:"title"`
	Hypothesis  string                 `json:"hypothesis"`
	Materials   *string                `json:"materials"`
	Methods     string                 `json:"methods"`
	Results     *string                `json:"results"`
	Conclusion  *string                `json:"conclusion"`
	References  *string                `json:"references"`
	Status      ExperimentStatus       `json:"status"`
	StartedAt   *Time                  `json:"started_at"`
	CompletedAt *Time                  `json:"completed_at"`
	Steps       []ExperimentStep       `json:"steps"`
	Attachments []ExperimentAttachment `json:"attachments"`
	CreatedAt   Time                   `json:"created_at"`
	UpdatedAt   Time                   `json:"updated_at"`
}

// ExperimentStep ordering is defined by the server-assigned StepNumber,
// ascending and unique within its experiment. The client never renumbers.
type ExperimentStep struct {
	Id           string  `json:"id"`
	ExperimentId string  `json:"experiment_id"`
	StepNumber   int     `json:"step_number"`
	Description  string  `json:"description"`
	Observation  *string `json:"observation"`
	StartedAt    *Time   `json:"started_at"`
	CompletedAt  *Time   `json:"completed_at"`
	CreatedAt    Time    `json:"created_at"`
	UpdatedAt    Time    `json:"updated_at"`
}

type ExperimentAttachment struct {
	Id           string  `json:"id"`
	ExperimentId string  `json:"experiment_id"`
	FileName     string  `json:"file_name"`
	FileType     string  `json:"file_type"`
	FilePath     string  `json:"file_path"`
	Description  *string `json:"description"`
	CreatedAt    Time    `json:"created_at"`
}
