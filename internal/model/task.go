package model

// Task mirrors the wire shape of the remote task source. Field names match
// the JSON the source returns so a fetched collection round-trips untouched.
type Task struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}
