package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/ui"
	"github.com/logrusorgru/aurora"
)

type RendererOption func(*Renderer)

func WithColors(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.au = aurora.NewAurora(enabled)
	}
}

// WithAudioResolver rewrites the player source before it is printed, e.g.
// to turn a root-relative path into a full link.
func WithAudioResolver(fn func(string) string) RendererOption {
	return func(r *Renderer) {
		r.resolveAudio = fn
	}
}

// Renderer prints a Page to a terminal after each controller render. The
// drop-zone line is printed when it changes; result panels are printed on
// every Success or Error.
type Renderer struct {
	mu           sync.Mutex
	out          io.Writer
	page         *ui.Page
	au           aurora.Aurora
	resolveAudio func(string) string

	lastPrompt string
}

func NewRenderer(out io.Writer, page *ui.Page, opts ...RendererOption) *Renderer {
	r := &Renderer{
		out:  out,
		page: page,
		au:   aurora.NewAurora(true),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render has the signature controller.WithRenderHook expects.
func (r *Renderer) Render(state model.State) {
	snap := r.page.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	switch state.Kind {
	case model.UIStateError:
		if snap.ErrorVisible {
			fmt.Fprintf(r.out, "%s %s\n", r.au.Bold(r.au.Red("✗")), plainText(snap.ErrorText))
		}
	case model.UIStateSuccess:
		r.printResult(snap)
	}

	if snap.DropZonePrompt != r.lastPrompt {
		r.lastPrompt = snap.DropZonePrompt
		if snap.DropZoneEnabled {
			fmt.Fprintf(r.out, "%s %s\n", r.au.Cyan("›"), snap.DropZonePrompt)
		} else {
			fmt.Fprintf(r.out, "%s %s\n", r.au.Yellow("…"), snap.DropZonePrompt)
		}
	}
}

func (r *Renderer) printResult(snap ui.Snapshot) {
	if snap.AudioVisible {
		src := snap.AudioSource
		if r.resolveAudio != nil {
			src = r.resolveAudio(src)
		}
		fmt.Fprintf(r.out, "%s %s\n", r.au.Bold(r.au.Green("♪")), src)
	}
	if snap.TranscriptVisible {
		fmt.Fprintln(r.out, r.au.Bold("Transcript"))
		fmt.Fprintln(r.out, strings.TrimRight(plainText(snap.Transcript), "\n"))
	}
}

// plainText drops control characters so server text cannot drive the
// terminal. Newlines and tabs are kept.
func plainText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
