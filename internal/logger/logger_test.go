package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_ReturnsSameInstance(t *testing.T) {
	require.NoError(t, Init(nil))

	a := GetLogger("app")
	b := GetLogger("app")
	assert.Same(t, a, b)
	assert.NotSame(t, a, Access())
}

func TestInit_FileOutputWritesToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(&Config{
		Level:  "debug",
		Format: "json",
		Output: "file",
		Dir:    dir,
	}))
	t.Cleanup(func() { _ = Init(nil) })

	l := Audit()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.Info("hello")

	_, err := os.Stat(filepath.Join(dir, "audit.log"))
	assert.NoError(t, err)
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(&Config{Level: "loud", Output: "stdout"}))
	t.Cleanup(func() { _ = Init(nil) })

	assert.Equal(t, logrus.InfoLevel, App().GetLevel())
}
