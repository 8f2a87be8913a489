package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	"github.com/josephlewis42/simshell/core/config"
	"github.com/josephlewis42/simshell/core/logger"
	"github.com/josephlewis42/simshell/core/shell"
	"github.com/josephlewis42/simshell/core/symbols"
	"github.com/josephlewis42/simshell/core/ttylog"
	"github.com/juju/ratelimit"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"
)

// ServerVersion is advertised during the SSH handshake.
const ServerVersion = "simshell"

// Server serves a console to each remote operator over SSH.
type Server struct {
	configuration *config.Configuration
	events        *logger.Recorder
	logger        *zap.Logger
	symbols       *symbols.Table
	sshServer     *ssh.Server
}

// NewServer creates a server for the configuration. Events and log may be
// nil.
func NewServer(configuration *config.Configuration, events *logger.Recorder, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	table, err := LoadSymbols(configuration)
	if err != nil {
		return nil, err
	}

	server := &Server{
		configuration: configuration,
		events:        events,
		logger:        log,
		symbols:       table,
	}

	server.sshServer = &ssh.Server{
		Addr:             fmt.Sprintf(":%d", configuration.SSH.Port),
		Version:          ServerVersion,
		Handler:          server.HandleSession,
		PasswordHandler:  server.checkPassword,
		PublicKeyHandler: server.checkPublicKey,
		ServerConfigCallback: func(ctx ssh.Context) *gossh.ServerConfig {
			cfg := &gossh.ServerConfig{}
			if banner := configuration.SSH.Banner; banner != "" {
				cfg.BannerCallback = func(gossh.ConnMetadata) string {
					return banner + "\n"
				}
			}
			return cfg
		},
	}

	keyPem, err := configuration.PrivateKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	if err := server.sshServer.SetOption(ssh.HostKeyPEM(keyPem)); err != nil {
		return nil, fmt.Errorf("loading host key: %w", err)
	}

	return server, nil
}

func (s *Server) checkPassword(ctx ssh.Context, password string) bool {
	accepted := s.configuration.CheckPassword(ctx.User(), password)
	s.events.Login(ctx.User(), ctx.RemoteAddr().String(), accepted)
	return accepted
}

func (s *Server) checkPublicKey(ctx ssh.Context, key ssh.PublicKey) bool {
	keys, err := s.configuration.AuthorizedKeys(ctx.User())
	if err != nil {
		s.logger.Warn("bad authorized key", zap.String("user", ctx.User()), zap.Error(err))
	}

	accepted := false
	for _, authorized := range keys {
		if ssh.KeysEqual(authorized, key) {
			accepted = true
			break
		}
	}

	s.events.Login(ctx.User(), ctx.RemoteAddr().String(), accepted)
	return accepted
}

// HandleSession runs a console for one SSH session.
func (s *Server) HandleSession(sess ssh.Session) {
	events := s.events.NewSession()
	sessionID := events.SessionID()
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	log := s.logger.With(
		zap.String("session_id", sessionID),
		zap.String("user", sess.User()),
		zap.String("remote_addr", sess.RemoteAddr().String()),
	)
	log.Info("session started")

	status := s.runSession(sess, sessionID, events, log)
	if err := sess.Exit(exitStatus(status)); err != nil {
		log.Debug("sending exit status", zap.Error(err))
	}
	log.Info("session ended", zap.Int("status", status))
}

func (s *Server) runSession(sess ssh.Session, sessionID string, events *logger.Recorder, log *zap.Logger) int {
	pty, winch, isPty := sess.Pty()

	var in io.ReadCloser = sess
	var out io.Writer = sess
	var errOut io.Writer = sess.Stderr()
	if isPty {
		errOut = sess
	}

	if rate := s.configuration.SSH.MaxOutputBytesPerSecond; rate > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(rate), rate)
		out = ratelimit.Writer(out, bucket)
		errOut = ratelimit.Writer(errOut, bucket)
	}

	transcript, err := s.configuration.CreateSessionLog(sessionID)
	switch {
	case err != nil:
		log.Warn("session transcript disabled", zap.Error(err))
	case transcript != nil:
		defer transcript.Close()

		title := fmt.Sprintf("%s@%s", sess.User(), ServerVersion)
		recorder := ttylog.NewRecorder(ttylog.NewAsciicastLogSink(transcript, pty.Window.Width, pty.Window.Height, title))
		defer func() {
			if err := recorder.Err(); err != nil {
				log.Warn("session transcript incomplete", zap.Error(err))
			}
		}()

		in = recorder.Input(in)
		out = recorder.Output(out)
		errOut = recorder.Output(errOut)
	}

	var width atomic.Int64
	width.Store(int64(pty.Window.Width))
	if isPty {
		go func() {
			for window := range winch {
				width.Store(int64(window.Width))
			}
		}()
	}

	console, err := NewConsole(s.configuration, ConsoleOptions{
		Events:       events,
		Logger:       log,
		Symbols:      s.symbols,
		WindowOutput: out,
		IsTerminal:   isPty,
	})
	if err != nil {
		log.Error("creating console", zap.Error(err))
		fmt.Fprintln(errOut, "console unavailable")
		return shell.StatusFailed
	}
	defer console.Close()

	if raw := sess.RawCommand(); raw != "" {
		return console.ExecuteLine(raw, out, errOut)
	}

	err = console.Loop(shell.LoopConfig{
		Prompt: console.Prompt(),
		Stdin:  in,
		Stdout: out,
		Stderr: errOut,
		IsTerminal: func() bool {
			return isPty
		},
		Width: func() int {
			if w := int(width.Load()); w > 0 {
				return w
			}
			return 80
		},
	})
	if err != nil {
		log.Warn("console ended", zap.Error(err))
		return shell.StatusFailed
	}
	return shell.StatusOK
}

// exitStatus maps an invalid line to the conventional 255.
func exitStatus(status int) int {
	if status < 0 || status > 255 {
		return 255
	}
	return status
}

// Serve accepts connections on l until the server is shut down.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("- Starting SSH server", zap.Stringer("addr", l.Addr()))
	return s.sshServer.Serve(l)
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe() error {
	s.logger.Info("- Starting SSH server", zap.String("addr", s.sshServer.Addr))
	return s.sshServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for sessions to end.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
