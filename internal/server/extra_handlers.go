package server

import (
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/notesmcp/internal/tools"
)

// handleAdd handles the add MCP tool call.
func (s *NoteToolServer) handleAdd(ctx *server.Context, req tools.AddRequest) (tools.AddResponse, error) {
	start := time.Now()
	defer s.observe(tools.ToolAdd, start, true)
	return tools.AddResponse{Result: req.A + req.B}, nil
}

// handleGreeting serves the greeting resource.
func (s *NoteToolServer) handleGreeting(ctx *server.Context, req tools.GreetingRequest) (string, error) {
	s.logger.Debug("Serving greeting resource", "name", req.Name)
	return tools.Greeting(req.Name), nil
}

// handleOpenSettings handles the open_settings MCP tool call.
func (s *NoteToolServer) handleOpenSettings(ctx *server.Context, req tools.OpenSettingsRequest) (tools.SystemResponse, error) {
	start := time.Now()
	s.logger.Info("Processing open_settings request", "platform", s.controller.Platform())

	res := s.controller.OpenSettings(s.ctx)
	s.observe(tools.ToolOpenSettings, start, res.OK)
	return tools.SystemResponse{Success: res.OK, Message: res.Message}, nil
}

// handleSetBrightness handles the set_brightness MCP tool call.
func (s *NoteToolServer) handleSetBrightness(ctx *server.Context, req tools.SetBrightnessRequest) (tools.SystemResponse, error) {
	start := time.Now()
	s.logger.Info("Processing set_brightness request", "platform", s.controller.Platform(), "percent", req.Percent)

	res := s.controller.SetBrightness(s.ctx, req.Percent)
	s.observe(tools.ToolSetBrightness, start, res.OK)
	return tools.SystemResponse{Success: res.OK, Message: res.Message}, nil
}
