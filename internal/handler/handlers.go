package handler

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chetan-code/todoly/internal/models"
	"github.com/chetan-code/todoly/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

// Tasks is the set of task operations the handlers drive.
type Tasks interface {
	List(ctx context.Context, sess models.Session) ([]models.Task, error)
	Create(ctx context.Context, sess models.Session, text string) (service.Result, error)
	SetActive(ctx context.Context, sess models.Session, id int64, active bool) (service.Result, error)
	Rename(ctx context.Context, sess models.Session, id int64, text string) (service.Result, error)
	Delete(ctx context.Context, sess models.Session, id int64) (service.Result, error)
}

type TodoHandler struct {
	tasks     Tasks
	tmpl      *template.Template
	providers []string
}

// NewTodoHandler parses the page templates once. providers lists the
// sign-in providers offered on the login page.
func NewTodoHandler(tasks Tasks, providers []string) (*TodoHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &TodoHandler{tasks: tasks, tmpl: tmpl, providers: providers}, nil
}

type pageData struct {
	Session models.Session
	Tasks   []models.Task
	Error   string
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h *TodoHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	//already signed in - go straight to the list
	if SessionFromContext(r.Context()).Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, "login.html", struct{ Providers []string }{Providers: h.providers})
}

// HomeHandler renders the full page for the signed in user.
func (h *TodoHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	data := pageData{Session: sess}

	tasks, err := h.tasks.List(r.Context(), sess)
	if err != nil {
		data.Error = classify(r, err).Message
	}
	data.Tasks = tasks

	h.render(w, "index.html", data)
}

// ListHandler returns just the task list partial.
func (h *TodoHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	tasks, err := h.tasks.List(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, "task-list", pageData{Session: sess, Tasks: tasks})
}

func (h *TodoHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	res, err := h.tasks.Create(r.Context(), sess, r.FormValue("task"))
	h.settle(w, r, sess, res, err)
}

func (h *TodoHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	active, err := strconv.ParseBool(r.FormValue("active"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: active must be true or false", errBadInput))
		return
	}

	res, err := h.tasks.SetActive(r.Context(), sess, id, active)
	h.settle(w, r, sess, res, err)
}

func (h *TodoHandler) RenameHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.tasks.Rename(r.Context(), sess, id, r.FormValue("task"))
	h.settle(w, r, sess, res, err)
}

func (h *TodoHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, err := taskID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.tasks.Delete(r.Context(), sess, id)
	h.settle(w, r, sess, res, err)
}

// settle finishes every mutation: on failure the error is shown, on success
// the list is read again and sent back.
func (h *TodoHandler) settle(w http.ResponseWriter, r *http.Request, sess models.Session, res service.Result, err error) {
	switch {
	case err != nil:
		h.fail(w, r, err)
		return
	case res.Empty():
		h.fail(w, r, service.ErrUnauthenticated)
		return
	}

	slog.Info("task_mutation",
		"op", res.Op,
		"user_id", sess.UserID,
		"task_id", max(res.Task.ID, res.DeletedID))

	if !isHTMX(r) {
		//self redirection
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	tasks, err := h.tasks.List(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, "task-list", pageData{Session: sess, Tasks: tasks})
	//clear any error left over from an earlier attempt
	fmt.Fprint(w, `<div id="flash" hx-swap-oob="true"></div>`)
}

func (h *TodoHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(r, err)

	if !isHTMX(r) {
		if e.Status == http.StatusUnauthorized {
			LoginRedirect(w, r)
			return
		}
		http.Error(w, e.Message, e.Status)
		return
	}

	if e.Status == http.StatusUnauthorized {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(e.Status)
		return
	}
	//htmx skips swapping error statuses, so the flash goes out as 200
	w.Header().Set("HX-Retarget", "#flash")
	w.Header().Set("HX-Reswap", "innerHTML")
	h.render(w, "flash", pageData{Error: e.Message})
}

func (h *TodoHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template_render_failed", "template", name, "error", err)
	}
}

func taskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid task id %q", errBadInput, raw)
	}
	return id, nil
}
