package controller

import (
	"errors"
	"fmt"
	"reflect"
)

// DropZone is the region that accepts click-to-browse and dropped files.
type DropZone interface {
	SetPrompt(text string)
	SetEnabled(enabled bool)
	SetHighlighted(highlighted bool)
}

type AudioPlayer interface {
	SetSource(src string)
}

type Panel interface {
	SetHidden(hidden bool)
}

// TextNode receives plain text; implementations must not interpret markup.
type TextNode interface {
	SetText(text string)
}

type MessagePanel interface {
	Panel
	TextNode
}

// Elements are the UI references a Controller writes to. All are required;
// a typed nil pointer counts as missing.
type Elements struct {
	DropZone            DropZone
	AudioPlayer         AudioPlayer
	AudioContainer      Panel
	TranscriptContainer Panel
	TranscriptText      TextNode
	ErrorMessage        MessagePanel
}

var ErrMissingElement = errors.New("missing UI element")

func (e Elements) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"drop zone", isNil(e.DropZone)},
		{"audio player", isNil(e.AudioPlayer)},
		{"audio player container", isNil(e.AudioContainer)},
		{"transcript container", isNil(e.TranscriptContainer)},
		{"transcript text", isNil(e.TranscriptText)},
		{"error message", isNil(e.ErrorMessage)},
	}
	for _, r := range required {
		if r.missing {
			return fmt.Errorf("%w: %s", ErrMissingElement, r.name)
		}
	}
	return nil
}

func isNil(element any) bool {
	if element == nil {
		return true
	}
	v := reflect.ValueOf(element)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
