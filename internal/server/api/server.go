// Package api serves the receiver's read-only status API: newline delimited
// commands over TCP, one JSON line per reply.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

// ServerConfig represents the status API configuration of the receive command.
type ServerConfig struct {
	Addr        string        `help:"Status API listen address (empty disables the API)" env:"DECKRC_API_ADDR"`
	IdleTimeout time.Duration `help:"Close API connections idle for this long" default:"30s" env:"DECKRC_API_IDLE_TIMEOUT"`
}

// Server implements a small TCP API for inspecting a running receiver.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an API server for config.Addr.
func New(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   config.Addr,
		logger: logger,
		router: NewRouter(),
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address once started, the configured one before.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String())
	go a.serve()
	return nil
}

// Close stops the API server.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

func (a *Server) serve() {
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
				return
			}
			a.logger.Info("API accept error", "error", err)
			return
		}
		go a.handleConn(c)
	}
}

func (a *Server) writeError(w io.Writer, msg string) {
	problem := map[string]string{"error": msg}
	problemJSON, _ := json.Marshal(problem)
	fmt.Fprintf(w, "%s\n", string(problemJSON))
}

func (a *Server) writeOK(w io.Writer, rest string) {
	if rest == "" {
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "%s\n", rest)
	}
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	connLogger := a.logger.With("remote", conn.RemoteAddr().String())
	r := bufio.NewReader(conn)
	for {
		if a.config.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(a.config.IdleTimeout))
		}
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				connLogger.Debug("read api line", "error", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		connLogger.Debug("api cmd", "cmd", line)
		fields := strings.Fields(line)
		path := strings.ToLower(fields[0])

		h, params := a.router.Match(path)
		if h == nil {
			connLogger.Warn("api unknown path", "path", path)
			a.writeError(conn, "unknown path")
			continue
		}
		req := &Request{Ctx: a.ctx, Params: params, Args: fields[1:]}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(conn, err.Error())
			continue
		}
		a.writeOK(conn, res.JSON)
	}
}
