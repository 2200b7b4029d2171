package service

import "github.com/chetan-code/todoly/internal/models"

// Op names the mutation a Result came from.
type Op string

const (
	OpCreate    Op = "create"
	OpSetActive Op = "setActive"
	OpRename    Op = "rename"
	OpDelete    Op = "delete"
)

// Result is the outcome of a successful mutation. Create, SetActive and
// Rename carry the stored Task; Delete carries the removed id.
// The zero Result is "no result".
type Result struct {
	Op        Op
	Task      models.Task
	DeletedID int64
}

func (r Result) Empty() bool {
	return r.Op == ""
}

// Deleted is the confirmation returned to callers of a delete.
type Deleted struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// Payload is the value a transport should send back for this result.
func (r Result) Payload() any {
	switch r.Op {
	case OpDelete:
		return Deleted{ID: r.DeletedID, Deleted: true}
	case "":
		return nil
	}
	return r.Task
}
