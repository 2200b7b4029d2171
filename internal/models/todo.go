package models

// Task is a single to-do item owned by one user.
type Task struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Text   string `json:"task"`
	//true = pending, false = completed
	Active bool `json:"active"`
}
