package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
	"github.com/google/uuid"
)

const (
	IdlePrompt          = "Drag and drop an audio file here or click to select"
	UploadingPrompt     = "Uploading and processing..."
	GenericErrorMessage = "An unexpected error occurred while processing the audio."
	errorMessagePrefix  = "Error: "
)

var (
	// ErrUploadInProgress is returned, without touching the UI, when a file
	// arrives while another upload is still waiting for its response.
	ErrUploadInProgress = errors.New("an upload is already in progress")
	ErrNoFileSelected   = errors.New("no file selected")
	ErrNoFilePicker     = errors.New("no file picker configured")
)

// Submitter sends one validated file to the upload endpoint.
type Submitter interface {
	Upload(ctx context.Context, file model.SelectedFile) (model.UploadResult, error)
}

// FilePicker asks the user for files. It backs Click.
type FilePicker interface {
	Pick(ctx context.Context) ([]model.SelectedFile, error)
}

type Option func(*Controller)

func WithFilePicker(picker FilePicker) Option {
	return func(c *Controller) {
		c.picker = picker
	}
}

// WithRenderHook registers fn to run after every render, while the render
// lock is held. fn must not call back into the Controller.
func WithRenderHook(fn func(model.State)) Option {
	return func(c *Controller) {
		c.onRender = fn
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Controller is the upload-and-render flow: it validates a selected file,
// submits it, and projects the outcome onto its Elements. Render is the only
// writer of those elements.
type Controller struct {
	elements  Elements
	submitter Submitter
	picker    FilePicker
	onRender  func(model.State)
	newID     func() string

	renderMu sync.Mutex
	state    model.State
	dragging bool

	inFlight atomic.Bool
}

func New(elements Elements, submitter Submitter, opts ...Option) (*Controller, error) {
	if err := elements.validate(); err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if submitter == nil {
		return nil, utils.WrapIfNotNil(errors.New("submitter is required"))
	}

	c := &Controller{
		elements:  elements,
		submitter: submitter,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.Render(model.State{Kind: model.UIStateIdle})
	return c, nil
}

func (c *Controller) State() model.State {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	return c.state
}

func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

// Validate checks the declared media type against the allow-list.
func (c *Controller) Validate(file model.SelectedFile) error {
	if !model.IsAllowedMediaType(file.MediaType) {
		return &model.ValidationError{MediaType: file.MediaType}
	}
	return nil
}

// Click opens the file picker and handles the first file chosen.
func (c *Controller) Click(ctx context.Context) (model.UploadResult, error) {
	if c.picker == nil {
		return model.UploadResult{}, ErrNoFilePicker
	}
	files, err := c.picker.Pick(ctx)
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err)
	}
	return c.Select(ctx, files)
}

func (c *Controller) DragOver() {
	if c.Busy() {
		return
	}
	c.setDragging(true)
}

func (c *Controller) DragLeave() {
	c.setDragging(false)
}

// Drop handles the first of the dropped files.
func (c *Controller) Drop(ctx context.Context, files []model.SelectedFile) (model.UploadResult, error) {
	c.setDragging(false)
	return c.Select(ctx, files)
}

// Select handles the first file of a picker selection. An empty selection
// returns ErrNoFileSelected and changes nothing.
func (c *Controller) Select(ctx context.Context, files []model.SelectedFile) (model.UploadResult, error) {
	if len(files) == 0 {
		return model.UploadResult{}, ErrNoFileSelected
	}
	return c.HandleFile(ctx, files[0])
}

// HandleFile validates file and, when it is accepted, submits it.
// A rejected file renders the validation message and sends nothing.
func (c *Controller) HandleFile(ctx context.Context, file model.SelectedFile) (model.UploadResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		logging.NewLogger(ctx).Warnf("ignoring %q: %v", file.Name, ErrUploadInProgress)
		return model.UploadResult{}, ErrUploadInProgress
	}

	if err := c.Validate(file); err != nil {
		c.inFlight.Store(false)

		message := model.ValidationMessage
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			message = validationErr.UserMessage()
		}
		logging.NewLogger(ctx).Infof("rejected %q: %v", file.Name, err)
		c.Render(model.State{Kind: model.UIStateError, Message: message})
		return model.UploadResult{}, err
	}

	return c.submitClaimed(ctx, file)
}

// Submit sends an already validated file.
func (c *Controller) Submit(ctx context.Context, file model.SelectedFile) (model.UploadResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		logging.NewLogger(ctx).Warnf("ignoring %q: %v", file.Name, ErrUploadInProgress)
		return model.UploadResult{}, ErrUploadInProgress
	}
	return c.submitClaimed(ctx, file)
}

func (c *Controller) submitClaimed(ctx context.Context, file model.SelectedFile) (model.UploadResult, error) {
	ctx = logging.ContextWithField(ctx, "upload_id", c.newID())
	log := logging.NewLogger(ctx).WithField("file", file.Name)

	defer func() {
		// the drop zone never stays in the uploading state once the attempt is over
		if c.State().Kind == model.UIStateUploading {
			c.Render(model.State{Kind: model.UIStateIdle})
		}
		c.inFlight.Store(false)
	}()

	c.Render(model.State{Kind: model.UIStateUploading})

	result, err := c.submitter.Upload(ctx, file)
	if err != nil {
		log.Errorf("upload failed: %v", err)
		c.Render(model.State{Kind: model.UIStateError, Message: GenericErrorMessage})
		return model.UploadResult{}, &model.RequestError{
			Kind:    model.RequestErrorTransport,
			Message: GenericErrorMessage,
			Err:     err,
		}
	}

	if result.Failed() {
		log.Warnf("server reported error: %s", result.Error)
		c.Render(model.State{Kind: model.UIStateError, Message: errorMessagePrefix + result.Error})
		return result, &model.RequestError{
			Kind:    model.RequestErrorApplication,
			Message: result.Error,
		}
	}

	log.Infof("upload complete audio_url=%q", result.AudioURL)
	c.Render(model.State{
		Kind:       model.UIStateSuccess,
		AudioURL:   result.AudioURL,
		Transcript: result.FormattedTranslation,
	})
	return result, nil
}

// Render makes state visible. Idle and Uploading only touch the drop zone;
// Error and Success also restore the drop zone to its idle prompt.
func (c *Controller) Render(state model.State) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.state = state
	c.renderLocked()
}

func (c *Controller) setDragging(dragging bool) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if c.dragging == dragging {
		return
	}
	c.dragging = dragging
	c.renderLocked()
}

func (c *Controller) renderLocked() {
	el := c.elements
	state := c.state

	if state.Kind == model.UIStateUploading {
		el.DropZone.SetPrompt(UploadingPrompt)
		el.DropZone.SetEnabled(false)
		el.DropZone.SetHighlighted(false)
	} else {
		el.DropZone.SetPrompt(IdlePrompt)
		el.DropZone.SetEnabled(true)
		el.DropZone.SetHighlighted(c.dragging)
	}

	switch state.Kind {
	case model.UIStateError:
		el.ErrorMessage.SetText(state.Message)
		el.ErrorMessage.SetHidden(false)
		el.TranscriptContainer.SetHidden(true)
		el.AudioContainer.SetHidden(true)
	case model.UIStateSuccess:
		el.ErrorMessage.SetText("")
		el.ErrorMessage.SetHidden(true)
		el.AudioPlayer.SetSource(state.AudioURL)
		el.AudioContainer.SetHidden(false)
		el.TranscriptContainer.SetHidden(false)
		el.TranscriptText.SetText(state.Transcript)
	}

	if c.onRender != nil {
		c.onRender(state)
	}
}
