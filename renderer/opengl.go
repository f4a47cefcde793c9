package renderer

import (
	"fmt"
	"runtime"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 1.0

	// Light rotation speed in radians per key press.
	lightRotateSpeed float32 = 0.05
)

func init() {
	// glfw event handling must run on the main thread
	runtime.LockOSThread()
}

// An interactive opengl-based renderer.
type interactiveGLRenderer struct {
	*defaultRenderer

	// opengl handles
	window    *glfw.Window
	texture   uint32
	texFbo    uint32
	texW      uint32
	texH      uint32
	hostFrame []float32
	pixels    []uint8

	// state
	lastCursorPos types.Vec2
	mousePressed  bool
	inputChanged  bool
	seed          int64

	// Display options
	showStats bool
}

// Create a new interactive opengl renderer.
func NewInteractive(backend tracer.Backend, opts Options) (Renderer, error) {
	base, err := newDefaultRenderer("interactive renderer", backend, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: base,
		seed:            opts.Tracer.Seed,
	}

	err = r.initGL(opts)
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.releaseTexture()
		r.window.Destroy()
		r.window = nil
		glfw.Terminate()
	}
	r.defaultRenderer.Close()
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "lumen", nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

// Allocate a texture with the given dimensions and attach it to a read FBO.
// Any previously allocated texture is released.
func (r *interactiveGLRenderer) resizeTexture(frameW, frameH uint32) {
	r.releaseTexture()

	gl.GenTextures(1, &r.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(frameW), int32(frameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	r.texW, r.texH = frameW, frameH
	r.hostFrame = make([]float32, frameW*frameH*tracer.TargetChannels)
	r.pixels = make([]uint8, frameW*frameH*4)
}

func (r *interactiveGLRenderer) releaseTexture() {
	if r.texFbo != 0 {
		gl.DeleteFramebuffers(1, &r.texFbo)
		r.texFbo = 0
	}
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
	}
}

func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		fbW, fbH := r.window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			// Minimized
			glfw.WaitEvents()
			continue
		}
		frameW, frameH := uint32(fbW), uint32(fbH)

		// Don't do anything if we don't require additional samples
		capped := r.options.SamplesPerPixel != 0 && r.session.Sample() >= r.options.SamplesPerPixel
		if capped && !r.inputChanged && frameW == r.texW && frameH == r.texH {
			glfw.WaitEventsTimeout(0.1)
			continue
		}
		r.inputChanged = false

		// Errors are logged by renderFrame; try again on the next frame.
		if err := r.renderFrame(frameW, frameH); err != nil {
			continue
		}

		if frameW != r.texW || frameH != r.texH {
			r.resizeTexture(frameW, frameH)
		}
		if err := r.present(); err != nil {
			r.logger.Warningf("could not display frame: %v", err)
			continue
		}

		if r.showStats {
			r.updateTitle()
		}
		r.window.SwapBuffers()
	}
	return nil
}

// Copy the accumulated frame into the display texture and blit it to the
// window framebuffer.
func (r *interactiveGLRenderer) present() error {
	frameW, frameH, err := r.session.ReadFrame(r.hostFrame)
	if err != nil {
		return err
	}

	// GL textures start at the bottom row so the frame is not flipped.
	frame := &Frame{Width: frameW, Height: frameH, Data: r.hostFrame}
	frame.encode(r.pixels, int(frameW)*4, r.options.Exposure, false)

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(frameW), int32(frameH), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.pixels))

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.BlitFramebuffer(0, 0, int32(frameW), int32(frameH), 0, 0, int32(frameW), int32(frameH), gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return nil
}

func (r *interactiveGLRenderer) updateTitle() {
	last := r.stats.Last
	r.window.SetTitle(fmt.Sprintf(
		"lumen | %s | %d spheres | %d spp | %dx%d | %s/frame",
		r.stats.Backend,
		last.NumSpheres,
		last.Sample,
		last.FrameW,
		last.FrameH,
		last.RenderTime,
	))
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
		return
	case glfw.KeyUp, glfw.KeyW:
		moveDir = scene.Forward
	case glfw.KeyDown, glfw.KeyS:
		moveDir = scene.Backward
	case glfw.KeyLeft, glfw.KeyA:
		moveDir = scene.Left
	case glfw.KeyRight, glfw.KeyD:
		moveDir = scene.Right
	case glfw.KeyPageUp:
		moveDir = scene.Up
	case glfw.KeyPageDown:
		moveDir = scene.Down
	case glfw.KeyI:
		r.rotateLight(0, lightRotateSpeed)
		return
	case glfw.KeyK:
		r.rotateLight(0, -lightRotateSpeed)
		return
	case glfw.KeyJ:
		r.rotateLight(lightRotateSpeed, 0)
		return
	case glfw.KeyL:
		r.rotateLight(-lightRotateSpeed, 0)
		return
	case glfw.KeyR:
		r.session.RequestReset()
		r.inputChanged = true
		return
	case glfw.KeyN:
		r.newScene()
		return
	case glfw.KeyTab:
		r.showStats = !r.showStats
		if !r.showStats {
			r.window.SetTitle("lumen")
		}
		return
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	r.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
	r.inputChanged = true
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
		r.mousePressed = true
	} else {
		r.mousePressed = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.XY(float32(xPos), float32(yPos))
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos

	r.camera.Rotate(delta[0]*mouseSensitivityX, delta[1]*mouseSensitivityY)
	r.inputChanged = true
}

func (r *interactiveGLRenderer) rotateLight(deltaYaw, deltaPitch float32) {
	r.light.Rotate(deltaYaw, deltaPitch)
	r.inputChanged = true
}

// Regenerate the scene using the next seed.
func (r *interactiveGLRenderer) newScene() {
	r.seed++
	if err := r.session.RebuildScene(r.seed); err != nil {
		r.logger.Warningf("could not generate new scene: %v", err)
		return
	}

	r.logger.Noticef("generated scene with seed %d (%d spheres)", r.seed, len(r.session.Spheres()))
	r.inputChanged = true
}
