// Package models defines the domain types for memo.
package models

// Note is a single record of the memo file.
type Note struct {
	ID      int    `json:"id"`
	Status  Status `json:"status"`
	Date    string `json:"date"` // YYYY-MM-DD, compared as text
	Content string `json:"content"`
}

// DateGroup holds the notes sharing one date, in file order.
type DateGroup struct {
	Date  string `json:"date"`
	Notes []Note `json:"notes"`
}
