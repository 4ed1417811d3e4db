package dto

type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// UpdateNoteRequest is a partial update: nil fields are omitted from the
// payload and left untouched server-side.
type UpdateNoteRequest struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type DeleteResponse struct {
	Message string `json:"message"`
}
