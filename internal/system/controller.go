// Package system provides best-effort OS automation: opening the settings
// panel and adjusting display brightness with the host's own utilities.
package system

import (
	"context"
	"fmt"
	"log/slog"
)

// Result reports the outcome of an automation request in human-readable form.
type Result struct {
	OK      bool
	Message string
}

// Controller is the OS automation capability. One implementation exists per
// supported operating system.
type Controller interface {
	// Platform names the operating system this controller drives.
	Platform() string

	// OpenSettings opens the system settings or control panel.
	OpenSettings(ctx context.Context) Result

	// SetBrightness sets the display brightness to percent, clamped to 0-100.
	SetBrightness(ctx context.Context, percent int) Result
}

// New selects the controller for goos (a runtime.GOOS value).
func New(goos string, runner Runner, logger *slog.Logger) Controller {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "system", "platform", goos)

	switch goos {
	case "windows":
		return &windowsController{runner: runner, logger: logger}
	case "darwin":
		return &darwinController{runner: runner, logger: logger}
	case "linux":
		return &linuxController{runner: runner, logger: logger}
	default:
		return unsupportedController{goos: goos}
	}
}

// ClampPercent limits p to the range 0-100.
func ClampPercent(p int) int {
	return max(0, min(100, p))
}

type unsupportedController struct {
	goos string
}

func (c unsupportedController) Platform() string { return c.goos }

func (c unsupportedController) OpenSettings(context.Context) Result {
	return Result{Message: fmt.Sprintf("Unsupported OS: %s", c.goos)}
}

func (c unsupportedController) SetBrightness(context.Context, int) Result {
	return Result{Message: fmt.Sprintf("Unsupported OS: %s", c.goos)}
}
