package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chetan-code/todoly/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxRPCBody = 64 << 10 // 64KB

// Input schemas, one per procedure.
var procedureSchemas = map[string]string{
	"listTasks": `{
		"type": ["object", "null"],
		"additionalProperties": false
	}`,
	"createTask": `{
		"type": "object",
		"properties": {"task": {"type": "string"}},
		"required": ["task"],
		"additionalProperties": false
	}`,
	"setTaskActive": `{
		"type": "object",
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"active": {"type": "boolean"}
		},
		"required": ["id", "active"],
		"additionalProperties": false
	}`,
	"renameTask": `{
		"type": "object",
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"task": {"type": "string"}
		},
		"required": ["id", "task"],
		"additionalProperties": false
	}`,
	"deleteTask": `{
		"type": "object",
		"properties": {"id": {"type": "integer", "minimum": 1}},
		"required": ["id"],
		"additionalProperties": false
	}`,
}

type rpcInput struct {
	ID     int64  `json:"id"`
	Task   string `json:"task"`
	Active bool   `json:"active"`
}

type procedure struct {
	schema *jsonschema.Schema
	call   func(ctx context.Context, sess models.Session, in rpcInput) (any, error)
}

type rpcResponse struct {
	Result *rpcResult `json:"result,omitempty"`
	Error  *apiError  `json:"error,omitempty"`
}

type rpcResult struct {
	Data any `json:"data"`
}

// RPCHandler serves the task operations as JSON procedures at
// /api/{procedure}. The session is checked by the operation on every call.
type RPCHandler struct {
	procs map[string]procedure
}

func NewRPCHandler(tasks Tasks) (*RPCHandler, error) {
	calls := map[string]func(ctx context.Context, sess models.Session, in rpcInput) (any, error){
		"listTasks": func(ctx context.Context, sess models.Session, _ rpcInput) (any, error) {
			return tasks.List(ctx, sess)
		},
		"createTask": func(ctx context.Context, sess models.Session, in rpcInput) (any, error) {
			res, err := tasks.Create(ctx, sess, in.Task)
			return res.Payload(), err
		},
		"setTaskActive": func(ctx context.Context, sess models.Session, in rpcInput) (any, error) {
			res, err := tasks.SetActive(ctx, sess, in.ID, in.Active)
			return res.Payload(), err
		},
		"renameTask": func(ctx context.Context, sess models.Session, in rpcInput) (any, error) {
			res, err := tasks.Rename(ctx, sess, in.ID, in.Task)
			return res.Payload(), err
		},
		"deleteTask": func(ctx context.Context, sess models.Session, in rpcInput) (any, error) {
			res, err := tasks.Delete(ctx, sess, in.ID)
			return res.Payload(), err
		},
	}

	procs := make(map[string]procedure, len(calls))
	for name, call := range calls {
		schema, err := jsonschema.CompileString(name+".json", procedureSchemas[name])
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		procs[name] = procedure{schema: schema, call: call}
	}
	return &RPCHandler{procs: procs}, nil
}

func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "procedure")
	proc, ok := h.procs[name]
	if !ok {
		writeRPC(w, http.StatusNotFound, rpcResponse{Error: &apiError{
			Code: "NOT_FOUND", Message: fmt.Sprintf("no procedure %q", name),
		}})
		return
	}
	//only the read may come in as a GET
	if r.Method == http.MethodGet && name != "listTasks" {
		w.Header().Set("Allow", http.MethodPost)
		writeRPC(w, http.StatusMethodNotAllowed, rpcResponse{Error: &apiError{
			Code: "METHOD_NOT_SUPPORTED", Message: name + " requires POST",
		}})
		return
	}

	in, err := decodeInput(w, r, proc.schema)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := proc.call(r.Context(), SessionFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeRPC(w, http.StatusOK, rpcResponse{Result: &rpcResult{Data: data}})
}

func (h *RPCHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(r, err)
	writeRPC(w, e.Status, rpcResponse{Error: &e})
}

func decodeInput(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema) (rpcInput, error) {
	var in rpcInput

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRPCBody))
	if err != nil {
		return in, fmt.Errorf("%w: %v", errBadInput, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("null")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return in, fmt.Errorf("%w: malformed json: %v", errBadInput, err)
	}

	if err := schema.Validate(doc); err != nil {
		return in, fmt.Errorf("%w: %s", errBadInput, schemaMessage(err))
	}

	if doc != nil {
		if err := json.Unmarshal(body, &in); err != nil {
			return in, fmt.Errorf("%w: %v", errBadInput, err)
		}
	}
	return in, nil
}

// schemaMessage digs out the first leaf cause of a validation error.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

func writeRPC(w http.ResponseWriter, status int, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
