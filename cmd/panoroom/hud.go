package main

import (
	"fmt"
	"time"

	"github.com/taigrr/panoroom/pkg/editor"
)

// statusTTL is how long a status message stays on the bottom row.
const statusTTL = 4 * time.Second

// HUD renders an overlay with room info and controls
type HUD struct {
	title     string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	show      bool

	status   string
	statusAt time.Time
}

// NewHUD creates a new HUD
func NewHUD(title string) *HUD {
	return &HUD{
		title:   title,
		fpsTime: time.Now(),
		show:    true,
	}
}

// Toggle shows or hides the overlay.
func (h *HUD) Toggle() {
	h.show = !h.show
}

// Status sets a transient message on the bottom row.
func (h *HUD) Status(format string, args ...any) {
	h.status = fmt.Sprintf(format, args...)
	h.statusAt = time.Now()
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, v *editor.Viewport) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if h.status != "" && time.Since(h.statusAt) < statusTTL {
		msg := fmt.Sprintf("%s%s%s %s %s", bgBlack, bold, fgYellow, h.status, reset)
		fmt.Print(moveTo(height, max((width-len(h.status))/2, 1)) + msg)
		return
	}

	if !h.show {
		return
	}

	// Top left: FPS
	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	// Top middle: title
	titleCol := max((width-len(h.title)-2)/2, 1)
	fmt.Print(moveTo(1, titleCol) + fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.title, reset))

	// Top right: camera mode
	mode := v.CameraModes().Mode().String()
	fmt.Print(moveTo(1, max(width-len(mode)-2, 1)) + fmt.Sprintf("%s%s%s %s %s", bgBlack, fgCyan, bold, mode, reset))

	// Bottom: room state and hint
	room := v.Room()
	info := fmt.Sprintf("%s%s %d edges  ceiling %.1f  rot %.0f°  %s %s",
		bgBlack, fgWhite, room.EdgeCount(), room.Handles.CeilingHeight(), v.Rotation(), v.Interaction(), reset)
	fmt.Print(moveTo(height, 1) + info)

	hint := "+/- edges  [/] rotate  m mode  s/g/i/p  ? hud"
	fmt.Print(moveTo(height, max(width-len(hint)-1, 1)) + fmt.Sprintf("%s%s%s %s %s", bgBlack, dim, fgYellow, hint, reset))
}
