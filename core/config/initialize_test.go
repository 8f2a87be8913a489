package config

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(filepath.Join(tempDir, ConfigurationName))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OutputFs", func(t *testing.T) {
		assert.Nil(t, afero.WriteFile(cfg.OutputFs(), "trace.txt", []byte("x\n"), 0600))
		exists, err := afero.Exists(cfg.Fs(), filepath.Join(cfg.OutputDir, "trace.txt"))
		assert.Nil(t, err)
		assert.True(t, exists)
	})

	t.Run("ScriptDir", func(t *testing.T) {
		isDir, err := afero.DirExists(cfg.Fs(), cfg.ScriptDir)
		assert.Nil(t, err)
		assert.True(t, isDir)
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		require.Nil(t, err)
		_, err = ssh.ParsePrivateKey(keyPem)
		assert.Nil(t, err)
	})

	t.Run("HistoryPath", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, "history"), cfg.HistoryPath())
	})

	t.Run("SessionLog", func(t *testing.T) {
		fd, err := cfg.CreateSessionLog("abc")
		require.Nil(t, err)
		_, err = fd.WriteString("{}\n")
		assert.Nil(t, err)
		fd.Close()

		_, err = cfg.CreateSessionLog("abc")
		assert.Error(t, err, "transcripts are never overwritten")

		fd, err = cfg.OpenSessionLog("abc")
		require.Nil(t, err)
		data, err := io.ReadAll(fd)
		fd.Close()
		assert.Nil(t, err)
		assert.Equal(t, "{}\n", string(data))
	})

	t.Run("SymbolFile", func(t *testing.T) {
		rc, err := cfg.OpenSymbolFile()
		assert.Nil(t, err)
		assert.Nil(t, rc)
	})
}

func TestInitialize_KeepsExisting(t *testing.T) {
	memFs := afero.NewMemMapFs()
	logger := log.New(io.Discard, "", 0)

	_, err := initializeFs(memFs, logger)
	require.NoError(t, err)
	first, err := afero.ReadFile(memFs, PrivateKeyName)
	require.NoError(t, err)

	_, err = initializeFs(memFs, logger)
	require.NoError(t, err)
	second, err := afero.ReadFile(memFs, PrivateKeyName)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
