package tests

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ExternalServerSuite loads settings for tests that talk to a live
// transcription server. SETTINGS_FILE wins over $HOME/.env.
type ExternalServerSuite struct {
	suite.Suite
	settingsFile string
	serverURL    string
}

func (s *ExternalServerSuite) SetupSuite() {
	settingsFromEnv := strings.TrimSpace(os.Getenv("SETTINGS_FILE"))
	settingsFile := settingsFromEnv
	if settingsFile == "" {
		homeDir, err := os.UserHomeDir()
		require.NoError(s.T(), err)
		settingsFile = filepath.Join(homeDir, ".env")
	}
	s.settingsFile = settingsFile

	if _, err := os.Stat(settingsFile); err != nil {
		// a missing $HOME/.env is fine, a missing SETTINGS_FILE is not
		if !errors.Is(err, os.ErrNotExist) || settingsFromEnv != "" {
			require.NoError(s.T(), err)
		}
	} else {
		require.NoError(s.T(), godotenv.Overload(settingsFile))
	}

	s.serverURL = strings.TrimSpace(os.Getenv("POLYGLOT_UPLOAD_SERVER_URL"))
	if s.serverURL == "" {
		s.T().Skip("POLYGLOT_UPLOAD_SERVER_URL is not set; skipping external server integration test")
	}
}

func (s *ExternalServerSuite) SettingsFile() string {
	return s.settingsFile
}

func (s *ExternalServerSuite) ServerURL() string {
	return s.serverURL
}
