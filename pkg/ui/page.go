// Package ui holds an in-memory page: the set of elements a controller
// renders into, readable as a consistent Snapshot.
package ui

import (
	"sync"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
)

// Snapshot is a point-in-time copy of every element on a Page.
type Snapshot struct {
	DropZonePrompt      string
	DropZoneEnabled     bool
	DropZoneHighlighted bool
	AudioSource         string
	AudioVisible        bool
	TranscriptVisible   bool
	Transcript          string
	ErrorVisible        bool
	ErrorText           string
}

type Page struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewPage returns a page in its initial markup state: the drop zone shows
// prompt and every result panel is hidden.
func NewPage(prompt string) *Page {
	return &Page{snap: Snapshot{
		DropZonePrompt:  prompt,
		DropZoneEnabled: true,
	}}
}

func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.snap
}

func (p *Page) Elements() controller.Elements {
	return controller.Elements{
		DropZone:            &dropZone{page: p},
		AudioPlayer:         &audioPlayer{page: p},
		AudioContainer:      &panel{page: p, field: func(s *Snapshot) *bool { return &s.AudioVisible }},
		TranscriptContainer: &panel{page: p, field: func(s *Snapshot) *bool { return &s.TranscriptVisible }},
		TranscriptText:      &textNode{page: p, field: func(s *Snapshot) *string { return &s.Transcript }},
		ErrorMessage: &messagePanel{
			panel:    panel{page: p, field: func(s *Snapshot) *bool { return &s.ErrorVisible }},
			textNode: textNode{page: p, field: func(s *Snapshot) *string { return &s.ErrorText }},
		},
	}
}

func (p *Page) update(fn func(s *Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(&p.snap)
}

type dropZone struct {
	page *Page
}

func (d *dropZone) SetPrompt(text string) {
	d.page.update(func(s *Snapshot) { s.DropZonePrompt = text })
}

func (d *dropZone) SetEnabled(enabled bool) {
	d.page.update(func(s *Snapshot) { s.DropZoneEnabled = enabled })
}

func (d *dropZone) SetHighlighted(highlighted bool) {
	d.page.update(func(s *Snapshot) { s.DropZoneHighlighted = highlighted })
}

type audioPlayer struct {
	page *Page
}

func (a *audioPlayer) SetSource(src string) {
	a.page.update(func(s *Snapshot) { s.AudioSource = src })
}

// panel stores visibility; field picks which one.
type panel struct {
	page  *Page
	field func(s *Snapshot) *bool
}

func (p *panel) SetHidden(hidden bool) {
	p.page.update(func(s *Snapshot) { *p.field(s) = !hidden })
}

type textNode struct {
	page  *Page
	field func(s *Snapshot) *string
}

func (t *textNode) SetText(text string) {
	t.page.update(func(s *Snapshot) { *t.field(s) = text })
}

type messagePanel struct {
	panel
	textNode
}
