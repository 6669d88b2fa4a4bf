package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-dronetrack/pkg/hub"
	"github.com/teslashibe/go-dronetrack/pkg/input"
	"github.com/teslashibe/go-dronetrack/pkg/tracking"
)

func jsonStatus(st Status) ([]byte, error) {
	return json.Marshal(st)
}

// handleStatus returns the current flight status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// TrackingRequest is the request body for the tracking switch. An empty
// body toggles.
type TrackingRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleTracking turns tracking on, off, or toggles it
func (s *Server) handleTracking(c *fiber.Ctx) error {
	if s.opts.Tracking == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tracking not configured",
		})
	}

	var req TrackingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid body: " + err.Error(),
			})
		}
	}

	var enabled bool
	if req.Enabled != nil {
		s.opts.Tracking.SetEnabled(*req.Enabled)
		enabled = *req.Enabled
	} else {
		enabled = s.opts.Tracking.Toggle()
	}

	s.AddLog("tracking", map[bool]string{true: "tracking enabled", false: "tracking disabled"}[enabled])
	return c.JSON(fiber.Map{"enabled": enabled})
}

// handleListKeys returns the bound key names
func (s *Server) handleListKeys(c *fiber.Ctx) error {
	if km, ok := s.opts.Keys.(interface{ Keymap() input.Keymap }); ok {
		return c.JSON(km.Keymap().Keys())
	}
	return c.JSON([]string{})
}

// handleKeyPress routes a key as if it was pressed in the window
func (s *Server) handleKeyPress(c *fiber.Ctx) error {
	key := c.Params("key")
	if !s.handleKey(key, "api") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown key: " + key,
		})
	}
	return c.JSON(fiber.Map{"key": key})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// handleGetTuning returns the live tuning parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	if s.opts.Tuner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tuning not configured",
		})
	}
	return c.JSON(s.opts.Tuner.TuningParams())
}

// handleSetTuning applies non-zero tuning parameters
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	if s.opts.Tuner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tuning not configured",
		})
	}

	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body: " + err.Error(),
		})
	}

	if err := s.opts.Tuner.SetTuningParams(params); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, tracking.ErrInvalidConfig) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	s.AddLog("tuning", "parameters updated")
	return c.JSON(s.opts.Tuner.TuningParams())
}

// handleHubWS attaches a websocket connection to a hub
func (s *Server) handleHubWS(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := hub.NewClient(h, conn)
		if client == nil {
			conn.Close()
			return
		}
		client.Run()
	}
}

// handleClients reports connected websocket clients per hub
func (s *Server) handleClients(c *fiber.Ctx) error {
	counts := fiber.Map{}
	for _, h := range []*hub.Hub{s.statusHub, s.cameraHub, s.controlHub} {
		counts[h.Name()] = h.ClientCount()
	}
	return c.JSON(counts)
}
