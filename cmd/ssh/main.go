package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/draw"
	"github.com/tomz197/airclash/internal/logger"
	"github.com/tomz197/airclash/internal/loop"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	cfg, err := config.Load(config.GetEnv("AIRCLASH_CONFIG", config.DefaultPath))
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logs := logger.New(os.Stderr, "ssh", cfg.LogLevel)

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logs.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "level", cfg.Level)

	// Closed on shutdown so running sessions end their loops.
	shutdown := make(chan struct{})
	games := &gameHandler{cfg: cfg, logger: logs, done: shutdown}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			games.middleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logs, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logs.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logs.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logs.Fatal("server error", "err", err)
		}
	}()

	<-done
	logs.Info("shutting down server", "sessions", games.active())
	close(shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logs.Error("shutdown error", "err", err)
	}
}

// gameHandler runs an independent game for every SSH session.
type gameHandler struct {
	cfg    config.Config
	logger *log.Logger
	done   <-chan struct{}

	mu       sync.Mutex
	sessions int
}

func (g *gameHandler) active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessions
}

func (g *gameHandler) track(delta int) {
	g.mu.Lock()
	g.sessions += delta
	g.mu.Unlock()
}

// middleware handles SSH sessions and runs the game loop.
func (g *gameHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		sessLog := g.logger.With("user", sess.User())
		sessLog.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)
		g.track(1)
		defer g.track(-1)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		cfg := g.cfg
		if sess.User() != "" {
			cfg.PlayerName = sess.User()
		}
		// The session is not a local TTY, so color support is not detected.
		renderer := lipgloss.NewRenderer(sess)
		renderer.SetColorProfile(termenv.ANSI256)

		err := loop.Run(bufio.NewReader(sess), sess, loop.Options{
			TermSizeFunc: sizeTracker.getSize,
			Config:       cfg,
			Logger:       sessLog,
			Renderer:     renderer,
			Done:         g.done,
		})
		if err != nil {
			sessLog.Error("game error", "err", err)
			fmt.Fprintf(sess, "game error: %v\n", err)
		}
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
