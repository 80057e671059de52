package renderer

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unsafe"

	"github.com/vegatrace/vega/denoiser"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/scene/reader"
	"github.com/vegatrace/vega/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05

	// Height in pixels for the frame-time series widget
	frameSeriesHeight uint32 = 20

	// Window title refresh interval
	titleUpdateInterval = 500 * time.Millisecond
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1
)

// An interactive opengl-based renderer.
type interactiveGLRenderer struct {
	*defaultRenderer

	// opengl handles
	window    *glfw.Window
	fbTexture uint32
	texFbo    uint32

	// state
	lastCursorPos types.Vec2
	mousePressed  [2]bool
	camera        *scene.Camera

	// mutex for synchronizing updates
	sync.Mutex

	// Display options
	showUI          bool
	frameTimeSeries *stackedSeries
	lastTitleUpdate time.Time
}

// Create a new interactive opengl renderer presenting the display target in
// a glfw window.
func NewInteractive(sc *scene.Scene, service denoiser.Service, opts Options) (Renderer, error) {
	base, err := NewDefault(sc, service, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		defaultRenderer: base.(*defaultRenderer),
		camera:          sc.Camera,
	}

	if err = r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}
	if err = r.initUI(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
	r.defaultRenderer.Close()
	glfw.Terminate()
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), "vega", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for display target data
	gl.GenTextures(1, &r.fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)
	r.window.SetDropCallback(r.onFileDrop)

	return nil
}

func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		r.Lock()
		err := r.defaultRenderer.Render()
		if err != nil {
			r.Unlock()
			return err
		}

		// Frames are submitted asynchronously; drain the queue so the
		// display target holds the finished frame before upload.
		r.queue.WaitIdle()
		r.uploadDisplayTarget()

		frameW, frameH := r.targets.Size()
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, int32(frameW), int32(frameH), 0, 0, int32(frameW), int32(frameH), gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		if r.showUI {
			r.renderUI()
		}
		r.updateTitle()

		r.window.SwapBuffers()
		r.Unlock()
	}
	return nil
}

func (r *interactiveGLRenderer) uploadDisplayTarget() {
	display := r.targets.Get(RoleDisplay)
	gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(display.W), int32(display.H), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&display.U8[0]))
}

func (r *interactiveGLRenderer) updateTitle() {
	now := time.Now()
	if now.Sub(r.lastTitleUpdate) < titleUpdateInterval {
		return
	}
	r.lastTitleUpdate = now

	stats := r.Stats()
	state := "accumulating"
	if stats.Frozen {
		state = "converged"
	}
	denoised := ""
	if stats.DenoisedFrame >= 0 {
		denoised = fmt.Sprintf(", denoised @ %d", stats.DenoisedFrame)
	}
	r.window.SetTitle(fmt.Sprintf("vega [frame %d, %s%s, %1.1f ms]", stats.Frame, state, denoised, float64(stats.RenderTime)/float64(time.Millisecond)))
}

func (r *interactiveGLRenderer) initUI() error {
	frameW, frameH := r.targets.Size()

	// Setup ortho projection for UI bits
	gl.Disable(gl.DEPTH_TEST)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, float64(frameW), float64(frameH), 0, -1, 1)
	gl.Viewport(0, 0, int32(frameW), int32(frameH))
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()

	// Setup series
	r.frameTimeSeries = makeStackedSeries(1, int(frameW))

	return nil
}

func (r *interactiveGLRenderer) onBeforeShowUI() {
	r.frameTimeSeries.Clear()
}

func (r *interactiveGLRenderer) renderUI() {
	_, frameH := r.targets.Size()
	r.frameTimeSeries.Append(0, float32(r.Stats().RenderTime)/float32(time.Millisecond))
	r.frameTimeSeries.Render(frameH-frameSeriesHeight, frameSeriesHeight)
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
	case glfw.KeyUp:
		moveDir = scene.Forward
	case glfw.KeyDown:
		moveDir = scene.Backward
	case glfw.KeyLeft:
		moveDir = scene.Left
	case glfw.KeyRight:
		moveDir = scene.Right
	case glfw.KeyTab:
		r.showUI = !r.showUI
		if r.showUI {
			r.onBeforeShowUI()
		}
		return
	case glfw.KeyD:
		r.toggleDenoise()
		return
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}

	r.Lock()
	r.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
	r.Unlock()
}

func (r *interactiveGLRenderer) toggleDenoise() {
	r.Lock()
	defer r.Unlock()

	settings := r.settings
	settings.DenoiseApply = !settings.DenoiseApply
	r.ApplySettings(settings)
	r.logger.Noticef("denoising enabled: %t", settings.DenoiseApply)
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	r.mousePressed[leftMouseButton] = false
	r.mousePressed[rightMouseButton] = false

	if action != glfw.Press {
		return
	}

	xPos, yPos := w.GetCursorPos()
	r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)

	if button == glfw.MouseButtonRight {
		r.mousePressed[rightMouseButton] = true
		r.pickAtCursor(xPos, yPos)
		return
	}
	r.mousePressed[leftMouseButton] = true
}

// Right clicks report the scene instance under the cursor and recenter
// the camera look-at on the hit point.
func (r *interactiveGLRenderer) pickAtCursor(xPos, yPos float64) {
	r.Lock()
	defer r.Unlock()

	res := r.Pick(uint32(xPos), uint32(yPos))
	if !res.Hit() {
		r.logger.Noticef("pick (%d, %d): no geometry", int(xPos), int(yPos))
		return
	}
	r.logger.Noticef("pick (%d, %d): instance %q, triangle %d at distance %3.3f", int(xPos), int(yPos), res.Name, res.TriIndex, res.HitT)

	r.camera.LookAt = res.Point
	r.camera.Update()
}

// Dropping a scene file onto the window reloads the scene in place.
func (r *interactiveGLRenderer) onFileDrop(w *glfw.Window, names []string) {
	if len(names) == 0 {
		return
	}

	sc, err := reader.ReadScene(names[0])
	if err != nil {
		r.logger.Errorf("could not load dropped scene %s: %v", names[0], err)
		return
	}

	r.Lock()
	defer r.Unlock()

	if err = r.pool.Drain(); err != nil {
		r.logger.Errorf("could not drain in-flight frames: %v", err)
		return
	}
	r.queue.WaitIdle()

	frameW, frameH := r.targets.Size()
	sc.Camera.SetupProjection(float32(frameW) / float32(frameH))

	r.sc = sc
	r.camera = sc.Camera
	r.clock.Reset()
	r.logger.Noticef("loaded scene %s", names[0])
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed[leftMouseButton] {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	delta[0] *= mouseSensitivityX
	delta[1] *= mouseSensitivityY
	r.lastCursorPos = newPos

	// The left mouse button rotates lookat around eye
	r.Lock()
	r.camera.Pitch = delta[1]
	r.camera.Yaw = delta[0]
	r.camera.Update()
	r.Unlock()
}

type stackedSeries struct {
	series [][]float32
	colors []types.Vec3
}

func makeStackedSeries(numSeries, histCount int) *stackedSeries {
	s := &stackedSeries{
		series: make([][]float32, numSeries),
		colors: make([]types.Vec3, numSeries),
	}

	for sIndex := 0; sIndex < numSeries; sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
		s.colors[sIndex] = types.Vec3{rand.Float32(), rand.Float32(), 1.0}
	}

	return s
}

// Clear series
func (s *stackedSeries) Clear() {
	histCount := len(s.series[0])
	for sIndex := 0; sIndex < len(s.series); sIndex++ {
		s.series[sIndex] = make([]float32, histCount)
	}
}

// Shift series values and append new value at the end.
func (s *stackedSeries) Append(seriesIndex int, val float32) {
	s.series[seriesIndex] = append(s.series[seriesIndex][1:], val)
}

func (s *stackedSeries) Render(rY, rHeight uint32) {
	gl.Begin(gl.LINES)
	for x := 0; x < len(s.series[0]); x++ {
		var sum float32 = 0
		var scale float32 = 1.0
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sum += s.series[seriesIndex][x]
		}
		if sum > 0.0 {
			scale = float32(rHeight) / sum
		}

		var y float32 = float32(rY)
		gl.LineWidth(1.0)
		for seriesIndex := 0; seriesIndex < len(s.series); seriesIndex++ {
			sH := s.series[seriesIndex][x] * scale
			gl.Color3fv(&s.colors[seriesIndex][0])
			gl.Vertex2f(float32(x), y)
			gl.Vertex2f(float32(x), y+sH)
			y += sH
		}

	}
	gl.End()
}
