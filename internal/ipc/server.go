package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"station/internal/logging"
	"station/internal/settings"
)

// Backend is the subset of the settings store the RPC service needs.
type Backend interface {
	Reload() (settings.Document, error)
	ApplyUpdate(settings.Partial) error
	Current() settings.Document
	Path() string
	State() settings.State
}

// Server exposes the settings store via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, backend Backend, logger *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("ipc server requires a settings backend")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName(serviceName, &service{backend: backend, logger: logger}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

const serviceName = "Settings"

type service struct {
	backend Backend
	logger  *slog.Logger
}

// Get reloads the settings file and returns the reconciled document.
func (s *service) Get(_ GetRequest, resp *GetResponse) error {
	doc, err := s.backend.Reload()
	if err != nil {
		s.logger.Error("settings reload failed", logging.Error(err))
		return err
	}
	resp.Settings = doc
	return nil
}

// Update merges the partial document into the settings and saves them.
func (s *service) Update(req UpdateRequest, resp *UpdateResponse) error {
	resp.Path = s.backend.Path()
	if err := s.backend.ApplyUpdate(req.Settings); err != nil {
		if errors.Is(err, settings.ErrInvalidSettings) {
			s.logger.Info("settings update rejected", logging.Error(err))
		}
		return err
	}
	resp.Saved = true
	resp.Settings = s.backend.Current()
	s.logger.Debug("settings updated", logging.Strings("keys", req.Settings.Keys()))
	return nil
}

// Status reports the daemon PID and settings store state.
func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.PID = os.Getpid()
	resp.SettingsPath = s.backend.Path()
	resp.State = string(s.backend.State())
	return nil
}
