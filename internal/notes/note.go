// Package notes assembles recognized lines into notes.
//
// A Pipeline sends each extracted line to a Recognizer, one at a time and
// in selection order, and joins the results with newlines. A run that
// fails part-way produces nothing: a Note is only created and added to the
// Collection once every line has been recognized.
package notes

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Note is one processed set of lines.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`

	// Content is Lines joined with "\n".
	Content string `json:"content"`

	// Lines holds the per-line transcriptions in selection order.
	Lines []string `json:"lines"`
}

func newNote(title string, lines []string, createdAt time.Time) *Note {
	kept := make([]string, len(lines))
	copy(kept, lines)
	return &Note{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: createdAt,
		Content:   strings.Join(kept, "\n"),
		Lines:     kept,
	}
}

// Collection holds notes most recent first. It is safe for concurrent use.
type Collection struct {
	mu    sync.RWMutex
	notes []*Note
	seq   int
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// NextTitle reserves the next sequence number and returns its title,
// "Note 001", "Note 002" and so on.
func (c *Collection) NextTitle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("Note %03d", c.seq)
}

// Add prepends n.
func (c *Collection) Add(n *Note) {
	if n == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append([]*Note{n}, c.notes...)
}

// List returns the notes, most recent first.
func (c *Collection) List() []*Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// Len returns the number of notes.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.notes)
}
