package types

const (
	USER_ROLE_USER      = "user"
	USER_ROLE_ASSISTANT = "assistant"
	USER_ROLE_SYSTEM    = "system"
)

// ChatMessage is one turn of a project's conversation. System messages are
// synthetic routing hints, stored but never rendered to the user.
type ChatMessage struct {
	ID        string `json:"id" db:"id"`
	ProjectID string `json:"project_id" db:"project_id"`
	Role      string `json:"role" db:"role"`
	Content   string `json:"content" db:"content"`
	SendTime  int64  `json:"send_time" db:"send_time"`
}

// Chat intents the router may emit. Anything else is unroutable and gets
// the fixed fallback reply.
const (
	ACTION_SQL_QUERY       = "sql database query"
	ACTION_ALERT           = "alert"
	ACTION_VISUALIZATION   = "visualization"
	ACTION_COMPARISON      = "comparison"
	ACTION_INSIGHT_DETAILS = "insight details"
	ACTION_CHAT            = "chat"
)

const FALLBACK_REPLY = "I'm not sure how to process that request."
