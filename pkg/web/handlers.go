package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/juggle-music/pkg/hub"
)

// handleStatus returns the processor snapshot with session details
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Session: s.session,
		Started: s.started,
		Clients: s.eventHub.ClientCount() + s.cameraHub.ClientCount(),
		Status:  s.status.Status(),
	})
}

// handleTargets returns the targets and their bound intervals
func (s *Server) handleTargets(c *fiber.Ctx) error {
	return c.JSON(s.status.Status().Targets)
}

// handleTriggers returns recent triggered events
func (s *Server) handleTriggers(c *fiber.Ctx) error {
	return c.JSON(s.Triggers())
}

// handleEventsWS streams tracking events to one client
func (s *Server) handleEventsWS(c *websocket.Conn) {
	hub.NewClient(s.eventHub, c).Run()
}

// handleCameraWS streams JPEG preview frames to one client
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}
