// Package input turns SDL2 events into per-frame viewer input.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/stlview/internal/engine/camera"
	"github.com/Faultbox/stlview/internal/engine/scene"
)

// movementKeys maps held keys to camera directions.
var movementKeys = map[sdl.Scancode]camera.Movement{
	sdl.SCANCODE_W:      camera.Forward,
	sdl.SCANCODE_S:      camera.Backward,
	sdl.SCANCODE_A:      camera.Left,
	sdl.SCANCODE_D:      camera.Right,
	sdl.SCANCODE_SPACE:  camera.Up,
	sdl.SCANCODE_LSHIFT: camera.Down,
	sdl.SCANCODE_RSHIFT: camera.Down,
}

// Input accumulates SDL events between frames.
type Input struct {
	held    map[sdl.Scancode]bool
	looking bool

	lookDX, lookDY float32
	scaleSteps     int

	resized       bool
	width, height int32

	screenshot bool
	open       bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{held: make(map[sdl.Scancode]bool)}
}

// Update polls pending SDL events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			quit = true
		}
	}
	return quit
}

func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.resized = true
			i.width, i.height = e.Data1, e.Data2
		}

	case *sdl.KeyboardEvent:
		code := e.Keysym.Scancode
		if e.Type == sdl.KEYUP {
			delete(i.held, code)
			return false
		}
		i.held[code] = true
		// Held Q/E keep scaling on every key repeat.
		switch code {
		case sdl.SCANCODE_Q:
			i.scaleSteps++
		case sdl.SCANCODE_E:
			i.scaleSteps--
		}
		if e.Repeat != 0 {
			return false
		}
		switch code {
		case sdl.SCANCODE_ESCAPE:
			return true
		case sdl.SCANCODE_F12:
			i.screenshot = true
		case sdl.SCANCODE_O:
			i.open = true
		}

	case *sdl.MouseMotionEvent:
		if i.looking {
			i.lookDX += float32(e.XRel)
			i.lookDY += float32(e.YRel)
		}

	case *sdl.MouseButtonEvent:
		if e.Button == sdl.BUTTON_RIGHT {
			i.looking = e.Type == sdl.MOUSEBUTTONDOWN
		}
	}
	return false
}

// Frame returns the input gathered since the previous call and resets the
// accumulated deltas. Held keys persist until released.
func (i *Input) Frame() scene.FrameInput {
	var m camera.Movement
	for code := range i.held {
		m |= movementKeys[code]
	}
	in := scene.FrameInput{
		Movement:   m,
		LookDX:     i.lookDX,
		LookDY:     i.lookDY,
		Looking:    i.looking,
		ScaleSteps: i.scaleSteps,
	}
	i.lookDX, i.lookDY, i.scaleSteps = 0, 0, 0
	return in
}

// Resized reports a pending window size change, once.
func (i *Input) Resized() (width, height int32, ok bool) {
	if !i.resized {
		return 0, 0, false
	}
	i.resized = false
	return i.width, i.height, true
}

// TakeScreenshot reports a pending screenshot request, once.
func (i *Input) TakeScreenshot() bool {
	req := i.screenshot
	i.screenshot = false
	return req
}

// OpenRequested reports a pending request to open another file, once.
func (i *Input) OpenRequested() bool {
	req := i.open
	i.open = false
	return req
}
