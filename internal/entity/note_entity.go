package entity

// Note is a free-form notebook entry. Ids and timestamps are always
// server-assigned; the client never fabricates either.
type Note struct {
	Id        string   `json:"id"`
	UserId    string   `json:"user_id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt Time     `json:"created_at"`
	UpdatedAt Time     `json:"updated_at"`
}
