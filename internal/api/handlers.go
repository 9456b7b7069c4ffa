package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/noteservice"
)

const maxBody = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func noteID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("note id %q is not an integer", raw)
	}
	return id, nil
}

// setETag exposes the current file checksum so clients can send it back in
// If-Match.
func (h *Handler) setETag(w http.ResponseWriter) {
	if sum, err := h.svc.Store().Checksum(); err == nil {
		w.Header().Set("ETag", `"`+sum+`"`)
	}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes
//	@Tags			notes
//	@Produce		json
//	@Param			latest	query		int		false	"Skip the first latest+1 notes"
//	@Param			status	query		string	false	"Keep notes with this status"	Enums(undone, done, postponed)
//	@Param			exclude	query		bool	false	"Invert the status filter"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		notes []Note
		err   error
	)
	switch {
	case q.Has("latest"):
		n, convErr := strconv.Atoi(q.Get("latest"))
		if convErr != nil {
			writeError(w, "list notes", apperr.Invalid("latest must be an integer"))
			return
		}
		notes, err = h.svc.ListLatest(r.Context(), n)
	case q.Get("status") != "":
		status, parseErr := noteservice.ParseStatus(q.Get("status"))
		if parseErr != nil {
			writeError(w, "list notes", parseErr)
			return
		}
		exclude, _ := strconv.ParseBool(q.Get("exclude"))
		notes, err = h.svc.FilterByStatus(r.Context(), status, exclude)
	default:
		notes, err = h.svc.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	h.setETag(w)
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes: nonNilNotes(notes),
		Total: len(notes),
	})
}

// Grouped handles GET /api/notes/grouped.
//
//	@Summary		Notes grouped by date in first-seen order
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	GroupedResponse
//	@Security		BearerAuth
//	@Router			/notes/grouped [get]
func (h *Handler) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.GroupByDate(r.Context())
	if err != nil {
		writeError(w, "group notes", err)
		return
	}
	if groups == nil {
		groups = []DateGroup{}
	}
	h.setETag(w)
	writeJSON(w, http.StatusOK, GroupedResponse{Groups: groups})
}

// NextID handles GET /api/notes/next-id.
func (h *Handler) NextID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextID(r.Context())
	if err != nil {
		writeError(w, "next id", err)
		return
	}
	writeJSON(w, http.StatusOK, NextIDResponse{ID: id})
}

// Search handles GET /api/search.
//
//	@Summary		Substring or prefix-pattern search
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Substring of date or content"
//	@Param			pattern	query		string	false	"Case-insensitive regular expression matched at the start of content"
//	@Success		200		{object}	NotesResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		notes []Note
		err   error
	)
	switch {
	case q.Get("pattern") != "":
		notes, err = h.svc.SearchPattern(r.Context(), q.Get("pattern"))
	case q.Get("q") != "":
		notes, err = h.svc.SearchSubstring(r.Context(), q.Get("q"))
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' or 'pattern' is required"))
		return
	}
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, NotesResponse{Notes: nonNilNotes(notes)})
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Add a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header	string				false	"Expected memo file checksum"
//	@Param			body		body	CreateNoteRequest	true	"Note to add; date defaults to today"
//	@Success		201		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Date == "" {
		req.Date = h.svc.Today()
	}
	note, err := h.svc.Add(mutationContext(r), req.Content, req.Date)
	if err != nil {
		writeError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// Import handles POST /api/notes/import. Every non-empty line of the plain
// text body becomes one note dated today.
//
//	@Summary		Add one note per line
//	@Tags			notes
//	@Accept			plain
//	@Produce		json
//	@Success		201	{object}	NotesResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	notes, err := h.svc.AddFromStream(mutationContext(r), r.Body, nil)
	if err != nil {
		writeError(w, "import notes", err)
		return
	}
	writeJSON(w, http.StatusCreated, NotesResponse{Notes: nonNilNotes(notes)})
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	int	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	found, err := h.svc.Delete(mutationContext(r), id)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/notes and removes the memo file.
//
//	@Summary		Delete all notes
//	@Tags			notes
//	@Success		204	"Memo file removed"
//	@Security		BearerAuth
//	@Router			/notes [delete]
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(mutationContext(r)); err != nil {
		writeError(w, "delete all", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Organize handles POST /api/notes/organize.
//
//	@Summary		Renumber notes to 1..N
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NotesResponse
//	@Security		BearerAuth
//	@Router			/notes/organize [post]
func (h *Handler) Organize(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Organize(mutationContext(r))
	if err != nil {
		writeError(w, "organize", err)
		return
	}
	writeJSON(w, http.StatusOK, NotesResponse{Notes: nonNilNotes(notes)})
}

func decodeStatus(w http.ResponseWriter, r *http.Request) (models.Status, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return 0, false
	}
	status, err := noteservice.ParseStatus(req.Status)
	if err != nil {
		writeError(w, "mark", err)
		return 0, false
	}
	return status, true
}

// MarkNote handles PUT /api/notes/{id}/status.
//
//	@Summary		Set the status of one note
//	@Tags			notes
//	@Accept			json
//	@Param			id		path	int				true	"Note id"
//	@Param			body	body	StatusRequest	true	"New status"
//	@Success		204		"Status updated"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/status [put]
func (h *Handler) MarkNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeError(w, "mark", err)
		return
	}
	status, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	found, err := h.svc.Mark(mutationContext(r), id, status)
	if err != nil {
		writeError(w, "mark", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("note not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAll handles PUT /api/notes/status.
//
//	@Summary		Set the status of every note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StatusRequest	true	"New status"
//	@Success		200		{object}	UpdatedResponse
//	@Security		BearerAuth
//	@Router			/notes/status [put]
func (h *Handler) MarkAll(w http.ResponseWriter, r *http.Request) {
	status, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAll(mutationContext(r), status)
	if err != nil {
		writeError(w, "mark all", err)
		return
	}
	writeJSON(w, http.StatusOK, UpdatedResponse{Updated: n})
}
