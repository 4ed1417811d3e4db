package dto

// CreateStepInline is a step submitted together with a new experiment.
// The server assigns ids and step numbers in submission order.
type CreateStepInline struct {
	Description string `json:"description" validate:"required"`
	Observation string `json:"observation,omitempty"`
}

type CreateExperimentRequest struct {
	Title      string             `json:"title" validate:"required"`
	Hypothesis string             `json:"hypothesis" validate:"required"`
	Materials  string             `json:"materials,omitempty"`
	Methods    string             `json:"methods" validate:"required"`
	References string             `json:"references,omitempty"`
	Steps      []CreateStepInline `json:"steps,omitempty" validate:"dive"`
}

type UpdateExperimentRequest struct {
	Title      *string `json:"title,omitempty"`
	Hypothesis *string `json:"hypothesis,omitempty"`
	Materials  *string `json:"materials,omitempty"`
	Methods    *string `json:"methods,omitempty"`
	Results    *string `json:"results,omitempty"`
	Conclusion *string `json:"conclusion,omitempty"`
	References *string `json:"references,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=planned in_progress completed failed"`
}

type CreateStepRequest struct {
	Description string `json:"description" validate:"required"`
	Observation string `json:"observation,omitempty"`
}

type UpdateStepRequest struct {
	Description *string `json:"description,omitempty"`
	Observation *string `json:"observation,omitempty"`
	StartedAt   *string `json:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

type CreateAttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	FileType    string `json:"file_type" validate:"required"`
	FilePath    string `json:"file_path,omitempty"`
	Description string `json:"description,omitempty"`
}
