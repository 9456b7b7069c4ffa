package api

import "github.com/starford/memo/internal/models"

// Note is the wire shape of one note (aliased from the domain layer).
type Note = models.Note

// DateGroup is the wire shape of one date bucket.
type DateGroup = models.DateGroup

// CreateNoteRequest is the request body for adding a note.
type CreateNoteRequest struct {
	Content string `json:"content" example:"buy milk" validate:"required"`
	Date    string `json:"date,omitempty" example:"2024-03-01"`
}

// StatusRequest is the request body for marking notes.
type StatusRequest struct {
	Status string `json:"status" example:"done" validate:"required"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []Note `json:"notes" validate:"required"`
	Total int    `json:"total" example:"42" validate:"required"`
}

// GroupedResponse wraps notes grouped by date.
type GroupedResponse struct {
	Groups []DateGroup `json:"groups" validate:"required"`
}

// NotesResponse wraps a plain list of notes.
type NotesResponse struct {
	Notes []Note `json:"notes" validate:"required"`
}

// NextIDResponse carries the id the next note would get.
type NextIDResponse struct {
	ID int `json:"id" example:"7" validate:"required"`
}

// UpdatedResponse reports how many notes a bulk update touched.
type UpdatedResponse struct {
	Updated int `json:"updated" example:"3" validate:"required"`
}

func nonNilNotes(notes []Note) []Note {
	if notes == nil {
		return []Note{}
	}
	return notes
}
