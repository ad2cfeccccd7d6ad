package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/media"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
)

const promptText = "Audio file path (or drag a file here): "

// Prompt is a file picker that reads one path per Pick. Dragging a file onto
// most terminals pastes its quoted or escaped path, which Pick unquotes.
type Prompt struct {
	in   *bufio.Reader
	out  io.Writer
	open func(path string) (model.SelectedFile, error)

	// pending survives a cancelled Pick so the next Pick gets that line
	// instead of racing a second reader.
	pending chan readResult
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:   bufio.NewReader(in),
		out:  out,
		open: media.FromPath,
	}
}

type readResult struct {
	line string
	err  error
}

// Pick returns no files for an empty line and io.EOF once input is exhausted.
func (p *Prompt) Pick(ctx context.Context) ([]model.SelectedFile, error) {
	fmt.Fprint(p.out, promptText)

	if p.pending == nil {
		lines := make(chan readResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			lines <- readResult{line: line, err: err}
		}()
		p.pending = lines
	}

	var read readResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case read = <-p.pending:
		p.pending = nil
	}

	if read.err != nil && !(errors.Is(read.err, io.EOF) && read.line != "") {
		return nil, read.err
	}

	path := unquotePath(read.line)
	if path == "" {
		return nil, nil
	}

	file, err := p.open(path)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	return []model.SelectedFile{file}, nil
}

// unquotePath undoes the quoting terminals apply to dropped paths:
// surrounding single or double quotes, or backslash-escaped characters.
func unquotePath(line string) string {
	path := strings.TrimSpace(line)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '\'' || first == '"') && first == last {
			return path[1 : len(path)-1]
		}
	}

	if runtime.GOOS == "windows" || !strings.Contains(path, `\`) {
		return path
	}
	var b strings.Builder
	escaped := false
	for _, r := range path {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
