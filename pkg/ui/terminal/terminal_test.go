package terminal

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/ui"
	"github.com/stretchr/testify/suite"
)

type stubSubmitter struct {
	result model.UploadResult
	err    error
}

func (s *stubSubmitter) Upload(context.Context, model.SelectedFile) (model.UploadResult, error) {
	return s.result, s.err
}

type RendererSuite struct {
	suite.Suite
	out       bytes.Buffer
	submitter *stubSubmitter
	ctrl      *controller.Controller
}

func TestRendererSuite(t *testing.T) {
	suite.Run(t, new(RendererSuite))
}

func (s *RendererSuite) SetupTest() {
	s.out.Reset()
	s.submitter = &stubSubmitter{}

	page := ui.NewPage(controller.IdlePrompt)
	renderer := NewRenderer(&s.out, page,
		WithColors(false),
		WithAudioResolver(func(src string) string { return "http://srv" + src }),
	)
	ctrl, err := controller.New(page.Elements(), s.submitter, controller.WithRenderHook(renderer.Render))
	s.Require().NoError(err)
	s.ctrl = ctrl
}

func (s *RendererSuite) TestSuccessPrintsLinkAndTranscript() {
	s.submitter.result = model.UploadResult{AudioURL: "/a.mp3", FormattedTranslation: "中文：你好\npinyin: nǐ hǎo\nEnglish: hello\n"}

	_, err := s.ctrl.HandleFile(context.Background(), model.NewSelectedFileFromBytes("a.mp3", model.MediaTypeMPEG, []byte("x")))
	s.Require().NoError(err)

	s.Equal(strings.Join([]string{
		"› " + controller.IdlePrompt,
		"… " + controller.UploadingPrompt,
		"♪ http://srv/a.mp3",
		"Transcript",
		"中文：你好",
		"pinyin: nǐ hǎo",
		"English: hello",
		"› " + controller.IdlePrompt,
		"",
	}, "\n"), s.out.String())
}

func (s *RendererSuite) TestErrorPrintsMessageOnly() {
	s.submitter.result = model.UploadResult{Error: "bad audio"}

	_, err := s.ctrl.HandleFile(context.Background(), model.NewSelectedFileFromBytes("a.mp3", model.MediaTypeMPEG, []byte("x")))
	s.Require().Error(err)

	s.Contains(s.out.String(), "✗ Error: bad audio\n")
	s.NotContains(s.out.String(), "Transcript")
}

func (s *RendererSuite) TestValidationErrorDoesNotRepeatPrompt() {
	s.out.Reset()

	_, err := s.ctrl.HandleFile(context.Background(), model.NewSelectedFileFromBytes("a.txt", "text/plain", nil))
	s.Require().Error(err)

	s.Equal("✗ "+model.ValidationMessage+"\n", s.out.String())
}

func (s *RendererSuite) TestTranscriptControlCharactersAreDropped() {
	s.submitter.result = model.UploadResult{AudioURL: "/a.mp3", FormattedTranslation: "hi\x1b[2J\tthere"}

	_, err := s.ctrl.HandleFile(context.Background(), model.NewSelectedFileFromBytes("a.mp3", model.MediaTypeMPEG, []byte("x")))
	s.Require().NoError(err)

	s.Contains(s.out.String(), "hi[2J\tthere\n")
	s.NotContains(s.out.String(), "\x1b")
}

type PromptSuite struct {
	suite.Suite
	dir string
}

func TestPromptSuite(t *testing.T) {
	suite.Run(t, new(PromptSuite))
}

func (s *PromptSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *PromptSuite) TestPickReadsPath() {
	path := filepath.Join(s.dir, "my lesson.mp3")
	s.Require().NoError(os.WriteFile(path, []byte("x"), 0o644))

	var out bytes.Buffer
	prompt := NewPrompt(strings.NewReader("'"+path+"'\n"), &out)

	files, err := prompt.Pick(context.Background())
	s.Require().NoError(err)
	s.Require().Len(files, 1)
	s.Equal("my lesson.mp3", files[0].Name)
	s.Equal(model.MediaTypeMPEG, files[0].MediaType)
	s.Equal(promptText, out.String())
}

func (s *PromptSuite) TestPickEmptyLineSelectsNothing() {
	prompt := NewPrompt(strings.NewReader("\n"), io.Discard)

	files, err := prompt.Pick(context.Background())
	s.NoError(err)
	s.Empty(files)
}

func (s *PromptSuite) TestPickEOF() {
	prompt := NewPrompt(strings.NewReader(""), io.Discard)

	_, err := prompt.Pick(context.Background())
	s.ErrorIs(err, io.EOF)
}

func (s *PromptSuite) TestPickMissingFile() {
	prompt := NewPrompt(strings.NewReader(filepath.Join(s.dir, "nope.mp3")), io.Discard)

	_, err := prompt.Pick(context.Background())
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *PromptSuite) TestPickCancelled() {
	reader, writer := io.Pipe()
	defer writer.Close()
	prompt := NewPrompt(reader, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prompt.Pick(ctx)
	s.ErrorIs(err, context.Canceled)
}

func (s *PromptSuite) TestUnquotePath() {
	s.Equal("/tmp/a b.mp3", unquotePath(`  "/tmp/a b.mp3" `))
	s.Equal("/tmp/a b.mp3", unquotePath(`'/tmp/a b.mp3'`))
	s.Equal("/tmp/plain.mp3", unquotePath("/tmp/plain.mp3\n"))
}
