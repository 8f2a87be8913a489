package config

import (
	"crypto/subtle"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	PrivateKeyName    = "private_key"
)

// Color modes for window output.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs afero.Fs

	Prompt      string `json:"prompt"`
	HistoryFile string `json:"history_file"`
	ScriptDir   string `json:"script_dir" validate:"required"`
	OutputDir   string `json:"output_dir" validate:"required"`
	SymbolFile  string `json:"symbol_file"`
	EventLog    string `json:"event_log" validate:"required"`
	LogLevel    string `json:"log_level" validate:"oneof=debug info warn error"`
	Color       string `json:"color" validate:"oneof=always auto never"`
	// AllowExec lets consoles run host programs with exec.
	AllowExec bool `json:"allow_exec"`

	SSH SSH `json:"ssh"`
}

type SSH struct {
	Port   int    `json:"port" validate:"gte=0,lte=65535"`
	Banner string `json:"banner"`
	// SessionDir holds asciicast recordings of remote sessions, empty
	// disables recording.
	SessionDir string `json:"session_dir"`
	// MaxOutputBytesPerSecond throttles each session's output, 0 is unlimited.
	MaxOutputBytesPerSecond int64 `json:"max_output_bytes_per_second" validate:"gte=0"`

	Users []User `json:"users" validate:"unique=Username,dive"`
}

type User struct {
	Username       string   `json:"username" validate:"required"`
	Passwords      []string `json:"passwords" validate:"unique"`
	AuthorizedKeys []string `json:"authorized_keys" validate:"unique"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Fs returns the filesystem rooted at the configuration directory.
func (c *Configuration) Fs() afero.Fs {
	return c.configFs
}

// OutputFs returns the filesystem file redirections are written to.
func (c *Configuration) OutputFs() afero.Fs {
	return afero.NewBasePathFs(c.configFs, c.OutputDir)
}

// PrivateKeyPem returns the bytes of the private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.configFs, PrivateKeyName)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.configFs.OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.configFs.OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// OpenSymbolFile opens the configured symbol map. It returns nil and no
// error if none is configured.
func (c *Configuration) OpenSymbolFile() (io.ReadCloser, error) {
	if c.SymbolFile == "" {
		return nil, nil
	}
	return c.configFs.Open(c.SymbolFile)
}

// HistoryPath returns the OS path of the console history, or "" if history
// is disabled.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" {
		return ""
	}
	if bp, ok := c.configFs.(*afero.BasePathFs); ok {
		if path, err := bp.RealPath(c.HistoryFile); err == nil {
			return path
		}
	}
	return ""
}

// CreateSessionLog creates the transcript file for a remote session. It
// returns nil and no error if recording is disabled.
func (c *Configuration) CreateSessionLog(sessionID string) (afero.File, error) {
	if c.SSH.SessionDir == "" {
		return nil, nil
	}
	if err := c.configFs.MkdirAll(c.SSH.SessionDir, 0700); err != nil {
		return nil, err
	}
	name := path.Join(c.SSH.SessionDir, sessionID+".cast")
	return c.configFs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
}

// OpenSessionLog opens a recorded transcript by session ID.
func (c *Configuration) OpenSessionLog(sessionID string) (afero.File, error) {
	return c.configFs.Open(path.Join(c.SSH.SessionDir, sessionID+".cast"))
}

func (c *Configuration) user(username string) (User, bool) {
	for _, u := range c.SSH.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// CheckPassword reports whether password is valid for username.
func (c *Configuration) CheckPassword(username, password string) bool {
	u, ok := c.user(username)
	if !ok {
		return false
	}
	for _, p := range u.Passwords {
		if subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1 {
			return true
		}
	}
	return false
}

// AuthorizedKeys parses the public keys allowed to log in as username.
func (c *Configuration) AuthorizedKeys(username string) ([]ssh.PublicKey, error) {
	u, ok := c.user(username)
	if !ok {
		return nil, nil
	}

	var out []ssh.PublicKey
	for _, line := range u.AuthorizedKeys {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("authorized key for %q: %w", username, err)
		}
		out = append(out, key)
	}
	return out, nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
