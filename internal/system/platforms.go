package system

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// darwinBrightnessPaths are the usual install locations of the Homebrew
// "brightness" utility.
var darwinBrightnessPaths = []string{"/usr/local/bin/brightness", "/opt/homebrew/bin/brightness"}

// linuxSettingsCommands are tried in order until one launches. The first two
// keep running until the window is closed.
var linuxSettingsCommands = [][]string{
	{"gnome-control-center"},
	{"systemsettings5"},
	{"xdg-open", "settings://"},
}

type windowsController struct {
	runner Runner
	logger *slog.Logger
}

func (c *windowsController) Platform() string { return "windows" }

// OpenSettings reports success even if the launcher fails; the settings URI
// handler gives no reliable exit status.
func (c *windowsController) OpenSettings(ctx context.Context) Result {
	if _, err := c.runner.Run(ctx, "powershell", "-NoProfile", "-Command", "Start-Process ms-settings:"); err != nil {
		c.logger.Warn("Settings launcher failed", "error", err)
	}
	return Result{OK: true, Message: "Opened Windows Settings."}
}

func (c *windowsController) SetBrightness(ctx context.Context, percent int) Result {
	p := ClampPercent(percent)
	script := fmt.Sprintf("(Get-WmiObject -Namespace root/WMI -Class WmiMonitorBrightnessMethods).WmiSetBrightness(1,%d)", p)

	out, err := c.runner.Run(ctx, "powershell", "-NoProfile", "-Command", script)
	if err != nil {
		c.logger.Warn("Brightness command failed", "percent", p, "error", err)
		return Result{Message: strings.TrimSpace("Failed to set brightness on Windows. " + out.Stderr)}
	}
	return Result{OK: true, Message: strings.TrimSpace("Success to set brightness on Windows. " + out.Stderr)}
}

type darwinController struct {
	runner Runner
	logger *slog.Logger
}

func (c *darwinController) Platform() string { return "darwin" }

// OpenSettings reports success regardless of the osascript exit status.
func (c *darwinController) OpenSettings(ctx context.Context) Result {
	if _, err := c.runner.Run(ctx, "osascript", "-e", `tell application "System Settings" to activate`); err != nil {
		c.logger.Warn("Settings launcher failed", "error", err)
	}
	return Result{OK: true, Message: "Opened macOS System Settings."}
}

func (c *darwinController) SetBrightness(ctx context.Context, percent int) Result {
	p := ClampPercent(percent)
	value := fmt.Sprintf("%.3f", float64(p)/100)

	for _, path := range darwinBrightnessPaths {
		if _, err := c.runner.Run(ctx, path, value); err == nil {
			return Result{OK: true, Message: fmt.Sprintf("Set brightness to %d%% on macOS.", p)}
		}
		c.logger.Debug("Brightness utility unavailable", "path", path)
	}
	return Result{Message: "Install 'brightness' via Homebrew to enable brightness control."}
}

type linuxController struct {
	runner Runner
	logger *slog.Logger
}

func (c *linuxController) Platform() string { return "linux" }

func (c *linuxController) OpenSettings(ctx context.Context) Result {
	for _, cmd := range linuxSettingsCommands {
		if err := c.runner.Start(ctx, cmd[0], cmd[1:]...); err == nil {
			return Result{OK: true, Message: "Opened Linux system settings."}
		}
		c.logger.Debug("Settings launcher unavailable", "command", cmd[0])
	}
	return Result{Message: "Failed to open system settings."}
}

func (c *linuxController) SetBrightness(ctx context.Context, percent int) Result {
	p := ClampPercent(percent)
	if _, err := c.runner.Run(ctx, "brightnessctl", "set", fmt.Sprintf("%d%%", p)); err != nil {
		c.logger.Warn("brightnessctl failed", "percent", p, "error", err)
		return Result{Message: "brightnessctl not found or failed."}
	}
	return Result{OK: true, Message: fmt.Sprintf("Set brightness to %d%% using brightnessctl.", p)}
}
