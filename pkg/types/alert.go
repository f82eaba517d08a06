package types

// Alert is an append-only notification owned by a project, created either
// by the chat alert handler or by the sampling generator.
type Alert struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Message   string `json:"message" db:"message"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
