package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want logrus.Level
	}{
		{"default", Config{}, logrus.InfoLevel},
		{"explicit", Config{Level: "warn"}, logrus.WarnLevel},
		{"garbage", Config{Level: "chatty"}, logrus.InfoLevel},
		{"verbose wins", Config{Level: "error", Verbose: true}, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, closer := New(tt.cfg)
			defer closer.Close()

			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubmoni.log")

	log, closer := New(Config{File: path})
	log.WithField("cwd", "01A").Info("state domapp")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "state domapp")
	assert.Contains(t, string(b), "cwd=01A")
}

func TestNew_Off(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubmoni.log")

	log, closer := New(Config{Level: "off", File: path})
	log.Error("dropped")
	require.NoError(t, closer.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
