// Package web serves the live tracking dashboard: processor status over
// REST, tracking events and annotated preview frames over websockets.
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/teslashibe/juggle-music/pkg/hub"
	"github.com/teslashibe/juggle-music/pkg/tracking"
	"gocv.io/x/gocv"
)

const (
	// maxTriggers is how many triggered events /api/triggers keeps
	maxTriggers = 100

	// defaultFrameInterval limits preview frames to 10 per second
	defaultFrameInterval = 100 * time.Millisecond
)

// StatusProvider reports processor state. *tracking.Processor implements it.
type StatusProvider interface {
	Status() tracking.Status
}

// EventMessage is the websocket payload for one tracking event
type EventMessage struct {
	ID      string `json:"id"`
	Session string `json:"session"`
	tracking.Event
}

// StatusResponse is the /api/status body
type StatusResponse struct {
	Session string    `json:"session"`
	Started time.Time `json:"started"`
	Clients int       `json:"clients"`
	tracking.Status
}

// Server is the dashboard server. It implements tracking.Sink.
type Server struct {
	app     *fiber.App
	addr    string
	session string
	started time.Time
	status  StatusProvider
	logger  *slog.Logger

	eventHub  *hub.Hub
	cameraHub *hub.Hub

	triggers   []EventMessage
	triggersMu sync.RWMutex

	// FrameInterval is the minimum gap between preview frames.
	FrameInterval time.Duration
	lastFrame     time.Time

	serving  atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

// NewServer creates a dashboard bound to addr reporting status from status.
func NewServer(addr string, status StatusProvider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:          addr,
		session:       uuid.NewString(),
		started:       time.Now(),
		status:        status,
		logger:        logger,
		eventHub:      hub.New("events", logger),
		cameraHub:     hub.New("camera", logger),
		triggers:      make([]EventMessage, 0, maxTriggers),
		FrameInterval: defaultFrameInterval,
	}

	app := fiber.New(fiber.Config{
		AppName:               "juggle-music",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/targets", s.handleTargets)
	api.Get("/triggers", s.handleTriggers)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/events", websocket.New(s.handleEventsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Session returns the id of this run
func (s *Server) Session() string {
	return s.session
}

// Start listens on the configured address and serves until ctx is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.eventHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	s.serving.Store(true)
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.Warn("dashboard shutdown", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "addr", ln.Addr().String(), "session", s.session)
	if err := s.app.Listener(ln); err != nil {
		return errors.Wrap(err, "serve dashboard")
	}
	return nil
}

// StartAsync starts the server in a goroutine and logs a failure.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// HandleEvent publishes ev to websocket clients and records triggers.
// It never blocks the frame loop.
func (s *Server) HandleEvent(ev tracking.Event) {
	msg := EventMessage{ID: uuid.NewString(), Session: s.session, Event: ev}

	if ev.Triggered {
		s.triggersMu.Lock()
		s.triggers = append(s.triggers, msg)
		if len(s.triggers) > maxTriggers {
			s.triggers = s.triggers[1:]
		}
		s.triggersMu.Unlock()
	}

	if s.eventHub.ClientCount() == 0 {
		return
	}
	if err := s.eventHub.BroadcastJSON(msg); err != nil {
		s.logger.Warn("encode event", "error", err)
	}
}

// PublishFrame sends img as a JPEG preview when someone is watching,
// at most once per FrameInterval. Called from the frame loop.
func (s *Server) PublishFrame(img gocv.Mat) {
	if s.cameraHub.ClientCount() == 0 || img.Empty() {
		return
	}
	now := time.Now()
	if now.Sub(s.lastFrame) < s.FrameInterval {
		return
	}
	s.lastFrame = now

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		s.logger.Warn("encode preview frame", "error", err)
		return
	}
	defer buf.Close()

	// The native buffer is freed on Close, so the hub gets its own copy.
	data := append([]byte(nil), buf.GetBytes()...)
	s.cameraHub.BroadcastBinary(data)
}

// Triggers returns the recent triggered events, oldest first.
func (s *Server) Triggers() []EventMessage {
	s.triggersMu.RLock()
	defer s.triggersMu.RUnlock()
	out := make([]EventMessage, len(s.triggers))
	copy(out, s.triggers)
	return out
}

// EventHub returns the hub carrying tracking events
func (s *Server) EventHub() *hub.Hub {
	return s.eventHub
}

// CameraHub returns the hub carrying preview frames
func (s *Server) CameraHub() *hub.Hub {
	return s.cameraHub
}

// Shutdown stops the HTTP server once. It is a no-op when Serve never ran.
// Hubs stop with the Serve context.
func (s *Server) Shutdown() error {
	if !s.serving.Load() {
		return nil
	}
	s.stopOnce.Do(func() {
		s.stopErr = s.app.Shutdown()
	})
	return s.stopErr
}
