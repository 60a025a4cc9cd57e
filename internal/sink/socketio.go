package sink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOConfig configures a remote visit observer reached over socket.io.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// SocketIO forwards each visit as a socket.io event.
type SocketIO struct {
	mu        sync.Mutex
	io        *socket.Socket
	event     string
	connected atomic.Bool
	closed    bool
}

// NewSocketIO connects to the observer and waits for the handshake, the
// first connection error, or the connect timeout, whichever comes first.
func NewSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", cfg.URL, "namespace", cfg.Namespace)

	if cfg.Event == "" {
		return nil, errors.New("socketio sink: event name must not be empty")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("socketio sink: failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socketio sink: URL %q must be absolute", cfg.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	s := &SocketIO{io: io, event: cfg.Event}

	ready := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		s.connected.Store(true)
		logger.Debug("Observer connected.", "sid", io.Id())
		select {
		case ready <- nil:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(...any) {
		s.connected.Store(false)
		logger.Debug("Observer disconnected.")
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused by observer")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case ready <- err:
		default:
		}
	})

	io.Connect()

	timer := time.NewTimer(cfg.ConnectTimeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socketio sink: connecting to %s: %w", cfg.URL, err)
		}
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("socketio sink: timed out after %s waiting for connection to %s", cfg.ConnectTimeout, cfg.URL)
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	}

	logger.Info("Forwarding visits to observer.", "event", cfg.Event)
	return s, nil
}

// Visit implements Sink.
func (s *SocketIO) Visit(_ context.Context, v Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.connected.Load() {
		return fmt.Errorf("socketio sink: observer disconnected before visit of %q", v.Name)
	}

	s.io.Emit(s.event, map[string]any{
		"node":           v.Name,
		"timestamp":      v.Timestamp(),
		"offset_seconds": v.Offset.Seconds(),
		"depth":          v.Depth,
	})
	return nil
}

// Close disconnects from the observer. It is safe to call more than once.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.io.Disconnect()
	return nil
}
