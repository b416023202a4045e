package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chetan-code/tasktracker/internal/models"
	"github.com/chetan-code/tasktracker/internal/service"
)

type TodoHandler struct {
	tasks *service.Tasks
	views *Views
}

func NewTodoHandler(tasks *service.Tasks, v *Views) *TodoHandler {
	return &TodoHandler{tasks: tasks, views: v}
}

func dashboardRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Dashboard lists the user's tasks, query, status and sort params combine
func (h *TodoHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderList(w, r, models.ListOptions{
		Query:  q.Get("query"),
		Status: models.ParseStatus(q.Get("status")),
		Sort:   models.ParseSort(q.Get("sort")),
	})
}

func (h *TodoHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderList(w, r, models.ListOptions{
		Query:  q.Get("query"),
		Status: models.ParseStatus(chi.URLParam(r, "status")),
		Sort:   models.ParseSort(q.Get("sort")),
	})
}

func (h *TodoHandler) SortHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderList(w, r, models.ListOptions{
		Query:  q.Get("query"),
		Status: models.ParseStatus(q.Get("status")),
		Sort:   models.ParseSort(q.Get("criteria")),
	})
}

func (h *TodoHandler) renderList(w http.ResponseWriter, r *http.Request, opts models.ListOptions) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		LoginRedirect(w, r)
		return
	}

	list, err := h.tasks.List(r.Context(), sess, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	//htmx search swaps the list, stats follow out of band
	if r.Header.Get("HX-Request") == "true" {
		h.views.Render(w, http.StatusOK, "task-list-swap", list)
		return
	}

	data := struct {
		Username string
		List     models.TaskList
		Query    string
		Status   models.StatusFilter
		Sort     models.SortCriteria
	}{
		Username: sess.Username,
		List:     list,
		Query:    opts.Query,
		Status:   opts.Status,
		Sort:     opts.Sort,
	}
	h.views.Render(w, http.StatusOK, "dashboard", data)
}

func (h *TodoHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		LoginRedirect(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.views.Render(w, http.StatusOK, "add", newFormView(nil))

	case http.MethodPost:
		in := taskInputFrom(r)
		_, err := h.tasks.Create(r.Context(), sess, in)
		if errors.Is(err, service.ErrEmptyTitle) {
			//nothing to add, show the form again
			slog.Debug("empty_task", "path", r.URL.Path, "user_id", sess.UserID)
			h.views.Render(w, http.StatusOK, "add", newFormView(formValues(in)))
			return
		}
		if h.formFailed(w, r, err, "add", 0, in) {
			return
		}
		dashboardRedirect(w, r)
	}
}

func (h *TodoHandler) EditHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		LoginRedirect(w, r)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		task, err := h.tasks.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		form := newFormView(map[string]string{
			"title":       task.Title,
			"description": task.Description,
			"date":        task.DueDateString(),
			"priority":    task.Priority,
		})
		form.ID = id
		h.views.Render(w, http.StatusOK, "edit", form)

	case http.MethodPost:
		in := taskInputFrom(r)
		_, err := h.tasks.Edit(r.Context(), sess, id, in)
		if h.formFailed(w, r, err, "edit", id, in) {
			return
		}
		dashboardRedirect(w, r)
	}
}

// ToggleHandler flips a task between complete and incomplete
func (h *TodoHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		LoginRedirect(w, r)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if _, err := h.tasks.Toggle(r.Context(), sess, id); err != nil {
		writeError(w, r, err)
		return
	}
	dashboardRedirect(w, r)
}

func (h *TodoHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		LoginRedirect(w, r)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), sess, id); err != nil {
		writeError(w, r, err)
		return
	}
	dashboardRedirect(w, r)
}

// formFailed re-renders page with the submitted values when err is a
// validation error, writes any other error, and reports whether it wrote
func (h *TodoHandler) formFailed(w http.ResponseWriter, r *http.Request, err error, page string, id int, in service.TaskInput) bool {
	if err == nil {
		return false
	}
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		writeError(w, r, err)
		return true
	}
	form := newFormView(formValues(in))
	form.ID = id
	form.Errors = verr.Fields
	h.views.Render(w, http.StatusUnprocessableEntity, page, form)
	return true
}

// writeError maps service errors to responses
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		LoginRedirect(w, r)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "Access forbidden", http.StatusForbidden)
	default:
		slog.Error("task_operation_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"ip", r.RemoteAddr,
			"error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// taskID reads the {id} path param, anything that is not an int is a 404
func taskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func taskInputFrom(r *http.Request) service.TaskInput {
	return service.TaskInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Date:        r.FormValue("date"),
		Priority:    r.FormValue("priority"),
	}
}

func formValues(in service.TaskInput) map[string]string {
	return map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"date":        in.Date,
		"priority":    in.Priority,
	}
}
