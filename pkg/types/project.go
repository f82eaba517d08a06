package types

// Project groups uploaded datasets, their insight catalogs, pinned
// insights, chat history and alerts under one name.
type Project struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Path        string `json:"path" db:"path"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}
