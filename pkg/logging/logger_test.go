package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggerSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) TearDownTest() {
	SetLoggerFactory(nil)
}

func (s *LoggerSuite) TestNewLogrusFactoryRejectsUnknownLevel() {
	factory, err := NewLogrusFactory("loud", "text", nil)
	s.Require().Error(err)
	s.Nil(factory)
}

func (s *LoggerSuite) TestNewLogrusFactoryRejectsUnknownFormat() {
	factory, err := NewLogrusFactory("info", "xml", nil)
	s.Require().Error(err)
	s.Nil(factory)

	var formatErr *UnknownFormatError
	s.ErrorAs(err, &formatErr)
	s.Equal("xml", formatErr.Format)
}

func (s *LoggerSuite) TestJSONFactoryCarriesContextFields() {
	var out bytes.Buffer
	factory, err := NewLogrusFactory("debug", "json", &out)
	s.Require().NoError(err)
	SetLoggerFactory(factory)

	ctx := ContextWithField(context.Background(), "upload_id", "abc")
	NewLogger(ctx).WithField("file", "a.mp3").Infof("upload %s", "started")

	var line map[string]any
	s.Require().NoError(json.Unmarshal(bytes.TrimSpace(out.Bytes()), &line))
	s.Equal("upload started", line["msg"])
	s.Equal("abc", line["upload_id"])
	s.Equal("a.mp3", line["file"])
	s.Equal("info", line["level"])
}

func (s *LoggerSuite) TestLevelFiltersDebug() {
	var out bytes.Buffer
	factory, err := NewLogrusFactory("warn", "text", &out)
	s.Require().NoError(err)

	logger := factory.CreateLogger(context.Background())
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	s.NotContains(out.String(), "hidden")
	s.True(strings.Contains(out.String(), "shown"))
}

func (s *LoggerSuite) TestContextWithFieldDoesNotMutateParent() {
	parent := ContextWithField(context.Background(), "a", 1)
	child := ContextWithField(parent, "b", 2)

	s.Len(fieldsFromContext(parent), 1)
	s.Len(fieldsFromContext(child), 2)
}
