// Package dropzone turns a directory into a drop target: files that appear
// in it are dropped onto the upload controller, one at a time.
package dropzone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/media"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
	"github.com/fsnotify/fsnotify"
)

const (
	DefaultSettleDelay = 500 * time.Millisecond
	minPollInterval    = 10 * time.Millisecond
)

type Dropper interface {
	Drop(ctx context.Context, files []model.SelectedFile) (model.UploadResult, error)
}

type Option func(*Watcher)

// WithSettleDelay sets how long a file must go without write events before
// it is considered complete.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithResultHandler is called after every drop attempt.
func WithResultHandler(fn func(path string, result model.UploadResult, err error)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

type Watcher struct {
	dir      string
	dropper  Dropper
	settle   time.Duration
	open     func(path string) (model.SelectedFile, error)
	onResult func(path string, result model.UploadResult, err error)
}

type pendingFile struct {
	path      string
	lastEvent time.Time
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func NewWatcher(dir string, dropper Dropper, opts ...Option) (*Watcher, error) {
	if dropper == nil {
		return nil, utils.WrapIfNotNil(errors.New("dropper is required"))
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if !info.IsDir() {
		return nil, utils.WrapIfNotNil(fmt.Errorf("%s is not a directory", dir))
	}

	w := &Watcher{
		dir:     dir,
		dropper: dropper,
		settle:  DefaultSettleDelay,
		open:    media.FromPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is done. Files already in the directory are ignored.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.NewLogger(ctx).WithField("dir", w.dir)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return utils.WrapIfNotNil(err)
	}
	defer func() {
		_ = fsw.Close()
	}()
	if err := fsw.Add(w.dir); err != nil {
		return utils.WrapIfNotNil(err)
	}

	poll := w.settle / 4
	if poll < minPollInterval {
		poll = minPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var queue []*pendingFile
	byPath := make(map[string]*pendingFile)
	handled := make(map[string]fileStamp)

	log.Infof("watching for dropped files")
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if p, exists := byPath[event.Name]; exists {
				p.lastEvent = time.Now()
				continue
			}
			p := &pendingFile{path: event.Name, lastEvent: time.Now()}
			byPath[event.Name] = p
			queue = append(queue, p)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watch error: %v", err)

		case now := <-ticker.C:
			for len(queue) > 0 && now.Sub(queue[0].lastEvent) >= w.settle {
				p := queue[0]
				if !w.process(ctx, p.path, handled) {
					// an upload from another trigger holds the controller; retry later
					p.lastEvent = now
					break
				}
				queue = queue[1:]
				delete(byPath, p.path)
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

// process returns false when the file should stay queued.
func (w *Watcher) process(ctx context.Context, path string, handled map[string]fileStamp) (done bool) {
	log := logging.NewLogger(ctx).WithField("path", path)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("drop panicked: %v", r)
			utils.PrintStack("drop", log)
			done = true
		}
	}()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return true
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	if previous, seen := handled[path]; seen && previous.size == stamp.size && previous.modTime.Equal(stamp.modTime) {
		return true
	}

	file, err := w.open(path)
	if err != nil {
		log.Warnf("skipping dropped file: %v", err)
		return true
	}

	result, err := w.dropper.Drop(ctx, []model.SelectedFile{file})
	if errors.Is(err, controller.ErrUploadInProgress) {
		return false
	}
	handled[path] = stamp
	if w.onResult != nil {
		w.onResult(path, result, err)
	}
	return true
}
