package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"log"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

// Initialize writes a default configuration, its directories and a host
// key into dir then loads it. Existing files are left alone.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initializeFs(configFs afero.Fs, logger *log.Logger) (*Configuration, error) {
	logger.Println("Initializing configuration...")

	if err := writeIfMissing(configFs, ConfigurationName, logger, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return nil, err
	}

	if err := writeIfMissing(configFs, PrivateKeyName, logger, generateHostKey); err != nil {
		return nil, err
	}

	cfg, err := loadFs(configFs)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.ScriptDir, cfg.OutputDir} {
		logger.Printf("- Creating directory %q", dir)
		if err := configFs.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}

	logger.Println("Done! Edit config.yaml to add users.")
	return cfg, nil
}

func writeIfMissing(configFs afero.Fs, name string, logger *log.Logger, contents func() ([]byte, error)) error {
	exists, err := afero.Exists(configFs, name)
	switch {
	case err != nil:
		return err
	case exists:
		logger.Printf("- %s exists, skipping", name)
		return nil
	}

	logger.Printf("- Writing %s", name)
	data, err := contents()
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	return afero.WriteFile(configFs, name, data, os.FileMode(0600))
}

func generateHostKey() ([]byte, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	block, err := ssh.MarshalPrivateKey(private, "simshell host key")
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(block), nil
}
