// panoroom - Terminal room layout editor
// Trace a room's floor plan and ceiling height over a 360° panorama by
// dragging the corners of a prism gizmo.
//
// Controls:
//
//	Mouse drag  - Drag a handle, or look around when no handle is hit
//	Scroll      - Change field of view
//	+/-         - Add or remove a wall (3-10)
//	[ / ]       - Rotate the panorama
//	M / Tab     - Toggle panorama and object (orbit) camera
//	Z / X       - Orbit camera closer / farther
//	R           - Reset the look direction
//	S           - Save layout YAML
//	G / I       - Export / import the room as GLB
//	P           - Save a PNG snapshot
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fortio.org/cli"
	"fortio.org/log"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/panoroom/pkg/editor"
	"github.com/taigrr/panoroom/pkg/gizmo"
	"github.com/taigrr/panoroom/pkg/layout"
	"github.com/taigrr/panoroom/pkg/render"
)

var (
	imagePath  = flag.String("image", "", "Equirectangular panorama image (JPEG/PNG/BMP/WebP)")
	edges      = flag.Int("edges", 4, "Initial number of walls (3-10)")
	radius     = flag.Float64("radius", gizmo.DefaultConfig().Radius, "Initial room radius")
	ceiling    = flag.Float64("ceiling", gizmo.DefaultConfig().CeilingHeight, "Initial ceiling height, relative to the camera")
	floorY     = flag.Float64("floor", gizmo.DefaultConfig().FloorHeight, "Floor height, relative to the camera")
	targetFPS  = flag.Int("fps", 60, "Target FPS")
	lookSpeed  = flag.Float64("look-speed", 0.1, "Look-around degrees per pixel of drag")
	rotation   = flag.Float64("rotation", 0, "Initial panorama rotation in degrees (0-360)")
	layoutPath = flag.String("layout", "", "Layout YAML to restore at startup")
	exportPath = flag.String("export", "room.yaml", "Layout YAML written on 's' and at exit (empty to disable)")
	glbPath    = flag.String("glb", "room.glb", "GLB path for 'g' export and 'i' import")
	snapPath   = flag.String("snapshot", "panoroom.png", "PNG path for 'p' snapshots")
	logPath    = flag.String("logfile", "", "Write logs to this file while the editor runs")
)

const (
	wheelStep    = 100 // wheel delta per notch
	rotationStep = 5.0 // degrees
	zoomStep     = 25.0
)

func main() {
	cli.ArgsHelp = ""
	cli.MaxArgs = 0
	cli.Main()
	os.Exit(run())
}

func config() editor.Config {
	cfg := editor.DefaultConfig()
	cfg.EdgeCount = *edges
	cfg.Gizmo.Radius = *radius
	cfg.Gizmo.CeilingHeight = *ceiling
	cfg.Gizmo.FloorHeight = *floorY
	cfg.LookSpeed = *lookSpeed
	cfg.FPS = *targetFPS
	cfg.OrbitDistance = 3 * *radius
	cfg.OrbitMinDistance = 1.5 * *radius
	cfg.OrbitMaxDistance = 6 * *radius
	return cfg
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return render.DecodeImage(f)
}

func run() int {
	cfg := config()

	// Everything that can fail on bad input is checked before the terminal
	// switches to the alternate screen.
	var (
		img   image.Image
		saved *layout.Layout
		err   error
	)
	if *imagePath != "" {
		if img, err = loadImage(*imagePath); err != nil {
			return log.FErrf("load panorama %q: %v", *imagePath, err)
		}
		log.Infof("Loaded panorama %s: %dx%d", filepath.Base(*imagePath), img.Bounds().Dx(), img.Bounds().Dy())
	}
	if *layoutPath != "" {
		if saved, err = layout.Load(*layoutPath); err != nil {
			return log.FErrf("load layout: %v", err)
		}
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return log.FErrf("get terminal size: %v", err)
	}

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	v, err := editor.NewViewport(render.NewFramebuffer(fbWidth, fbHeight), cfg)
	if err != nil {
		return log.FErrf("create viewport: %v", err)
	}
	if err := v.SetPanoramaRotation(*rotation); err != nil {
		return log.FErrf("rotation: %v", err)
	}
	if img != nil {
		if err := v.SetPanorama(img); err != nil {
			return log.FErrf("panorama: %v", err)
		}
	}
	if saved != nil {
		if err := v.ApplyLayout(saved); err != nil {
			return log.FErrf("apply layout: %v", err)
		}
		log.Infof("Restored layout %v (%d edges)", saved.ID, saved.EdgeCount)
	}

	// The alternate screen owns stderr from here on.
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return log.FErrf("open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(os.Stderr)

	if err := term.Start(); err != nil {
		return log.FErrf("start terminal: %v", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Events are queued and applied on the frame loop, so the viewport is
	// only ever touched from this goroutine.
	events := make(chan uv.Event, 256)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a := &app{
		term:     term,
		renderer: termRenderer,
		viewport: v,
		hud:      NewHUD("panoroom"),
		width:    width,
		height:   height,
		quit:     cancel,
	}

	targetDuration := time.Second / time.Duration(cfg.FPS)
	for {
		select {
		case <-ctx.Done():
			cleanup()
			a.saveLayout()
			log.SetOutput(os.Stderr)
			log.Infof("Bye")
			return 0
		default:
		}
		now := time.Now()

	drain:
		for {
			select {
			case ev := <-events:
				if err := a.handle(ev); err != nil {
					cleanup()
					log.SetOutput(os.Stderr)
					return log.FErrf("room geometry: %v", err)
				}
			default:
				break drain
			}
		}

		v.Tick()
		a.renderer.Render(v.Framebuffer())
		if err := a.renderer.Flush(); err != nil {
			cleanup()
			log.SetOutput(os.Stderr)
			return log.FErrf("flush: %v", err)
		}

		// HUD overlay (always update FPS, render clears lines when HUD off)
		a.hud.UpdateFPS()
		a.hud.Render(a.width, a.height, v)

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// app routes terminal events to the viewport.
type app struct {
	term          *uv.Terminal
	renderer      *render.TerminalRenderer
	viewport      *editor.Viewport
	hud           *HUD
	width, height int
	quit          context.CancelFunc
}

// handle applies one terminal event. A returned error is fatal.
func (a *app) handle(ev uv.Event) error {
	v := a.viewport
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		a.width, a.height = ev.Width, ev.Height
		a.term.Erase()
		a.term.Resize(a.width, a.height)
		a.renderer = render.NewTerminalRenderer(a.term, a.width, a.height)
		v.Resize(a.renderer.FramebufferSize())

	case uv.KeyPressEvent:
		a.key(ev)

	case uv.MouseClickEvent:
		x, y := render.CellToPixel(ev.X, ev.Y)
		v.PointerDown(x, y, ev.Button == uv.MouseLeft)

	case uv.MouseReleaseEvent:
		x, y := render.CellToPixel(ev.X, ev.Y)
		v.PointerUp(x, y)

	case uv.MouseMotionEvent:
		if ev.X < 0 || ev.Y < 0 || ev.X >= a.width || ev.Y >= a.height {
			v.PointerLeave()
			return nil
		}
		x, y := render.CellToPixel(ev.X, ev.Y)
		return v.PointerMove(x, y)

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.Wheel(-wheelStep)
		case uv.MouseWheelDown:
			v.Wheel(wheelStep)
		}
	}
	return nil
}

func (a *app) key(ev uv.KeyPressEvent) {
	v := a.viewport
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		a.quit()
	case ev.MatchString("+", "="):
		a.setEdges(v.Room().EdgeCount() + 1)
	case ev.MatchString("-", "_"):
		a.setEdges(v.Room().EdgeCount() - 1)
	case ev.MatchString("["):
		a.rotate(-rotationStep)
	case ev.MatchString("]"):
		a.rotate(rotationStep)
	case ev.MatchString("m", "tab"):
		if v.CameraModes().Mode() == editor.ModePanorama {
			v.SetCameraMode(editor.ModeObject)
		} else {
			v.SetCameraMode(editor.ModePanorama)
		}
	case ev.MatchString("z"):
		v.Orbit().Zoom(-zoomStep)
	case ev.MatchString("x"):
		v.Orbit().Zoom(zoomStep)
	case ev.MatchString("r"):
		v.LookAround().Lon, v.LookAround().Lat = 0, 0
	case ev.MatchString("s"):
		a.saveLayout()
	case ev.MatchString("g"):
		if err := v.ExportGLB(*glbPath); err != nil {
			a.warn("export GLB: %v", err)
			return
		}
		a.hud.Status("exported %s", *glbPath)
	case ev.MatchString("i"):
		if err := v.ImportGLB(*glbPath); err != nil {
			a.warn("import GLB: %v", err)
			return
		}
		a.hud.Status("imported %s", *glbPath)
	case ev.MatchString("p"):
		if err := v.Snapshot(*snapPath); err != nil {
			a.warn("snapshot: %v", err)
			return
		}
		a.hud.Status("saved %s", *snapPath)
	case ev.MatchString("?"), ev.MatchString("shift+/"):
		a.hud.Toggle()
	}
}

func (a *app) setEdges(n int) {
	if err := a.viewport.SetEdgeCount(n); err != nil {
		a.warn("edge count: %v", err)
		return
	}
	log.Infof("Room rebuilt with %d walls", n)
}

func (a *app) rotate(delta float64) {
	deg := math.Mod(a.viewport.Rotation()+delta+360, 360)
	if err := a.viewport.SetPanoramaRotation(deg); err != nil {
		a.warn("rotation: %v", err)
	}
}

func (a *app) saveLayout() {
	if *exportPath == "" {
		return
	}
	if err := a.viewport.Layout().Save(*exportPath); err != nil {
		a.warn("save layout: %v", err)
		return
	}
	a.hud.Status("saved %s", *exportPath)
	log.Infof("Layout saved to %s", *exportPath)
}

func (a *app) warn(format string, args ...any) {
	log.Warnf(format, args...)
	a.hud.Status(format, args...)
}
