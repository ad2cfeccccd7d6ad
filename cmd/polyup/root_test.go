package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/stretchr/testify/suite"
)

type CommandSuite struct {
	suite.Suite
	dir      string
	server   *httptest.Server
	requests atomic.Int32
	body     string
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	s.dir = s.T().TempDir()
	prevDir, wdErr := os.Getwd()
	s.Require().NoError(wdErr)
	s.Require().NoError(os.Chdir(s.dir))
	s.T().Cleanup(func() { _ = os.Chdir(prevDir) })
	for _, name := range []string{"SERVER_URL", "UPLOAD_PATH", "FIELD_NAME", "TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "NO_COLOR"} {
		s.T().Setenv("POLYGLOT_UPLOAD_"+name, "")
		s.Require().NoError(os.Unsetenv("POLYGLOT_UPLOAD_" + name))
	}
	s.T().Setenv("NO_COLOR", "1")

	s.requests.Store(0)
	s.body = `{"audio_url":"/uploads/abc_clip.mp3","formatted_translation":"<p>Hola</p>"}`
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.body))
	}))
}

func (s *CommandSuite) TearDownTest() {
	s.server.Close()
	logging.SetLoggerFactory(nil)
}

func (s *CommandSuite) writeFile(name, data string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(data), 0o644))
	return path
}

func (s *CommandSuite) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (s *CommandSuite) TestUploadPrintsResolvedAudioAndTranscript() {
	path := s.writeFile("clip.mp3", "ID3 audio")

	out, _, err := s.run("", "upload", "--server", s.server.URL, path)
	s.Require().NoError(err)
	s.Equal(int32(1), s.requests.Load())
	s.Contains(out, "♪ "+s.server.URL+"/uploads/abc_clip.mp3")
	s.Contains(out, "<p>Hola</p>")
	s.Contains(out, controller.IdlePrompt)
}

func (s *CommandSuite) TestUploadCollectsEveryFailure() {
	notes := s.writeFile("notes.txt", "plain text")
	missing := filepath.Join(s.dir, "missing.mp3")
	good := s.writeFile("clip.wav", "RIFF")

	out, _, err := s.run("", "upload", "--server", s.server.URL, notes, missing, good)
	s.Require().Error(err)
	s.Contains(err.Error(), "2 errors occurred")
	s.Contains(out, model.ValidationMessage)
	s.Equal(int32(1), s.requests.Load())
}

func (s *CommandSuite) TestUploadShowsServerError() {
	s.body = `{"error":"Audio too short"}`
	path := s.writeFile("clip.m4a", "m4a")

	out, _, err := s.run("", "upload", "--server", s.server.URL, path)
	s.Require().Error(err)
	s.Contains(out, "Error: Audio too short")
}

func (s *CommandSuite) TestServerFromEnvFile() {
	s.writeFile(".env", "POLYGLOT_UPLOAD_SERVER_URL="+s.server.URL+"\n")
	path := s.writeFile("clip.mp3", "ID3")

	_, _, err := s.run("", "upload", path)
	s.Require().NoError(err)
	s.Equal(int32(1), s.requests.Load())
}

func (s *CommandSuite) TestInvalidLogFormatFails() {
	path := s.writeFile("clip.mp3", "ID3")

	_, _, err := s.run("", "upload", "--server", s.server.URL, "--log-format", "xml", path)
	s.Require().Error(err)
	s.Equal(int32(0), s.requests.Load())
}

func (s *CommandSuite) TestBrowseReadsPathsUntilEOF() {
	first := s.writeFile("one.mp3", "ID3")
	second := s.writeFile("two three.wav", "RIFF")
	stdin := first + "\n\nnot-there.mp3\n'" + second + "'\n"

	out, _, err := s.run(stdin, "browse", "--server", s.server.URL)
	s.Require().NoError(err)
	s.Equal(int32(2), s.requests.Load())
	s.Equal(5, strings.Count(out, promptText()))
}

func (s *CommandSuite) TestWatchRejectsMissingDirectory() {
	_, _, err := s.run("", "watch", "--server", s.server.URL, filepath.Join(s.dir, "nope"))
	s.Require().Error(err)
}

func (s *CommandSuite) TestColorsDisabledForBuffers() {
	s.False(colorsEnabled(&bytes.Buffer{}, false))
	s.False(colorsEnabled(os.Stdout, true))
}

// promptText mirrors the picker's prompt so the test can count reads.
func promptText() string {
	return "Audio file path (or drag a file here): "
}
