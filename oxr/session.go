// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package oxr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/xr"
	"github.com/gogpu/xr/graphics"
	"github.com/gogpu/xr/internal/framechan"
	"github.com/gogpu/xr/internal/metrics"
)

// Session is the active session. The same *Session is visible in the
// main world (lifecycle commands) and, after handoff, in the render
// world (frame cycle); the runtime handle it wraps is safe for
// concurrent use.
type Session struct {
	// ID tags log records and traces of this session.
	ID uuid.UUID

	Backend graphics.Backend

	rt        RuntimeSession
	space     Space
	spaceType ReferenceSpaceType

	// running is read by the frame waiter goroutine.
	running   atomic.Bool
	destroyed atomic.Bool
	frames    atomic.Pointer[framechan.Chan[FrameState]]
}

// Runtime returns the runtime session handle.
func (s *Session) Runtime() RuntimeSession { return s.rt }

// Handle returns the runtime handle state events are reported for.
func (s *Session) Handle() SessionHandle { return s.rt.Handle() }

// Space returns the reference space views are located in.
func (s *Session) Space() Space { return s.space }

// SpaceType returns the type of the reference space.
func (s *Session) SpaceType() ReferenceSpaceType { return s.spaceType }

// Running reports whether the session has begun and not yet ended.
func (s *Session) Running() bool { return s.running.Load() }

func (s *Session) frameChan() *framechan.Chan[FrameState] { return s.frames.Load() }

// GraphicsInfo is the final negotiated blend mode, format and resolution
// of a session.
type GraphicsInfo struct {
	BlendMode  BlendMode
	Format     gputypes.TextureFormat
	Resolution Resolution
}

// Swapchain wraps a runtime swapchain and enforces the per-frame
// acquire, wait, release order.
type Swapchain struct {
	handle RuntimeSwapchain
	info   graphics.SwapchainCreateInfo

	mu    sync.Mutex
	phase imagePhase
	index uint32
}

type imagePhase uint8

const (
	imageFree imagePhase = iota
	imageAcquired
	imageReady
)

// Handle returns the runtime swapchain.
func (sc *Swapchain) Handle() RuntimeSwapchain { return sc.handle }

// Info returns the create info the swapchain was made with.
func (sc *Swapchain) Info() graphics.SwapchainCreateInfo { return sc.info }

// Index returns the most recently acquired image index.
func (sc *Swapchain) Index() uint32 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.index
}

// Acquire acquires the next image. The previous image must be released.
func (sc *Swapchain) Acquire() (uint32, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.phase != imageFree {
		return 0, fmt.Errorf("%w: acquire while an image is held", ErrImageOrder)
	}
	i, err := sc.handle.AcquireImage()
	if err != nil {
		return 0, fmt.Errorf("oxr: acquire image: %w", err)
	}
	sc.index = i
	sc.phase = imageAcquired
	return i, nil
}

// Wait blocks until the acquired image is ready to be rendered to.
func (sc *Swapchain) Wait(timeout time.Duration) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.phase != imageAcquired {
		return fmt.Errorf("%w: wait without acquire", ErrImageOrder)
	}
	if err := sc.handle.WaitImage(timeout); err != nil {
		return fmt.Errorf("oxr: wait image: %w", err)
	}
	sc.phase = imageReady
	return nil
}

// Release returns the image to the runtime.
func (sc *Swapchain) Release() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.phase != imageReady {
		return fmt.Errorf("%w: release without wait", ErrImageOrder)
	}
	if err := sc.handle.ReleaseImage(); err != nil {
		return fmt.Errorf("oxr: release image: %w", err)
	}
	sc.phase = imageFree
	return nil
}

// Discard gives a held image back to the runtime when the frame was
// dropped between acquire and release. An acquired image is waited on
// first. The swapchain is free afterwards even if the runtime refused.
func (sc *Swapchain) Discard() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.phase == imageFree {
		return nil
	}
	defer func() { sc.phase = imageFree }()
	if sc.phase == imageAcquired {
		if err := sc.handle.WaitImage(0); err != nil {
			return fmt.Errorf("oxr: discard image %d: wait: %w", sc.index, err)
		}
	}
	if err := sc.handle.ReleaseImage(); err != nil {
		return fmt.Errorf("oxr: discard image %d: %w", sc.index, err)
	}
	return nil
}

// Holding reports whether an image is acquired and not yet released.
func (sc *Swapchain) Holding() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.phase != imageFree
}

// Destroy destroys the runtime swapchain.
func (sc *Swapchain) Destroy() error {
	return sc.handle.Destroy()
}

// SwapchainImages are the render targets of a swapchain, indexed by
// image index.
type SwapchainImages struct {
	Images []graphics.Image
}

// At returns the image with index i.
func (s *SwapchainImages) At(i uint32) (graphics.Image, bool) {
	if s == nil || int(i) >= len(s.Images) {
		return graphics.Image{}, false
	}
	return s.Images[i], true
}

// FrameStream wraps a runtime frame stream and rejects a Begin without
// a matching End.
type FrameStream struct {
	rt RuntimeFrameStream

	mu      sync.Mutex
	inFrame bool
}

// Begin marks the start of rendering for the current frame.
func (fs *FrameStream) Begin() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.inFrame {
		return fmt.Errorf("%w: begin inside a frame", ErrFrameOrder)
	}
	if err := fs.rt.Begin(); err != nil {
		return fmt.Errorf("oxr: begin frame: %w", err)
	}
	fs.inFrame = true
	return nil
}

// End submits the frame's layers. An empty layer list skips presentation
// but still advances the runtime's frame counter.
func (fs *FrameStream) End(displayTime Time, blend BlendMode, layers []CompositionLayer) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.inFrame {
		return fmt.Errorf("%w: end outside a frame", ErrFrameOrder)
	}
	fs.inFrame = false
	if err := fs.rt.End(displayTime, blend, layers); err != nil {
		return fmt.Errorf("oxr: end frame: %w", err)
	}
	return nil
}

// InFrame reports whether Begin was called without End.
func (fs *FrameStream) InFrame() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.inFrame
}

// SessionResources is everything CreateSessionResources produces.
type SessionResources struct {
	Session     *Session
	Waiter      *FrameWaiter
	Stream      *FrameStream
	Swapchain   *Swapchain
	Images      *SwapchainImages
	Info        GraphicsInfo
	Passthrough *Passthrough
}

// CreateSessionResources creates a session from an initialized instance.
// It may be called again after a previous session was destroyed. On
// error every partially created runtime object is destroyed.
func CreateSessionResources(ctx context.Context, inst Instance, system SystemID, cfg SessionConfigInfo) (_ *SessionResources, err error) {
	_, span := startSpan(ctx, "oxr.create_session")
	defer func() {
		metrics.RecordSessionCreated(backendLabel, err)
		endSpan(span, err)
	}()

	if cfg.Graphics == nil {
		return nil, fmt.Errorf("%w: no graphics implementation", ErrNoAvailableBackend)
	}

	rt, waiter, stream, err := inst.CreateSession(system, cfg.Binding)
	if err != nil {
		return nil, fmt.Errorf("oxr: create session: %w", err)
	}
	var cleanup []func() error
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				_ = cleanup[i]()
			}
			_ = rt.Destroy()
		}
	}()

	vcs, err := inst.EnumerateViewConfigurations(system)
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate view configurations: %w", err)
	}
	if err := RequireStereo(vcs); err != nil {
		return nil, err
	}
	views, err := inst.EnumerateViewConfigurationViews(system, PrimaryStereo)
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate views: %w", err)
	}
	res, _, err := SelectResolution(cfg.Resolutions, views)
	if err != nil {
		return nil, err
	}

	codes, err := rt.EnumerateSwapchainFormats()
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate swapchain formats: %w", err)
	}
	format, err := SelectFormat(cfg.Formats, nativeFormats(cfg.Graphics, codes))
	if err != nil {
		return nil, err
	}
	native, _ := cfg.Graphics.ToNativeFormat(format)
	xr.Logger().Info("oxr: swapchain", "format", format, "resolution", res.String())

	info := graphics.StereoSwapchainCreateInfo(format, res.Width, res.Height)
	handle, err := rt.CreateSwapchain(native, info)
	if err != nil {
		return nil, fmt.Errorf("oxr: create swapchain: %w", err)
	}
	cleanup = append(cleanup, handle.Destroy)

	raw, err := handle.EnumerateImages()
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate swapchain images: %w", err)
	}
	images := &SwapchainImages{Images: make([]graphics.Image, len(raw))}
	for i, h := range raw {
		images.Images[i] = cfg.Graphics.WrapImage(uint32(i), h, info)
	}

	modes, err := inst.EnumerateEnvironmentBlendModes(system, PrimaryStereo)
	if err != nil {
		return nil, fmt.Errorf("oxr: enumerate blend modes: %w", err)
	}
	blend, err := SelectBlendMode(cfg.BlendModes, modes)
	if err != nil {
		return nil, err
	}

	spaceType := cfg.ReferenceSpace
	if spaceType == 0 {
		spaceType = SpaceStage
	}
	space, err := rt.CreateReferenceSpace(spaceType, IdentityPose)
	if err != nil {
		return nil, fmt.Errorf("oxr: create reference space: %w", err)
	}

	var pt *Passthrough
	if cfg.Passthrough {
		pt, err = createPassthrough(rt)
		if err != nil {
			// Passthrough is optional; render without it.
			xr.Logger().Warn("oxr: passthrough unavailable", "err", err)
			pt, err = nil, nil
		}
	}

	s := &Session{
		ID:        uuid.New(),
		Backend:   cfg.Graphics.Backend(),
		rt:        rt,
		space:     space,
		spaceType: spaceType,
	}
	span.SetAttributes(attribute.String("xr.session", s.ID.String()))
	xr.Logger().Info("oxr: session created", "session", s.ID, "blend_mode", blend.String(), "images", len(raw))

	return &SessionResources{
		Session:   s,
		Waiter:    newFrameWaiter(s, waiter),
		Stream:    &FrameStream{rt: stream},
		Swapchain: &Swapchain{handle: handle, info: info},
		Images:    images,
		Info: GraphicsInfo{
			BlendMode:  blend,
			Format:     format,
			Resolution: res,
		},
		Passthrough: pt,
	}, nil
}

// Destroy releases the runtime session. Only the first call reaches the
// runtime.
func (s *Session) Destroy() error {
	s.running.Store(false)
	if !s.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.rt.Destroy(); err != nil {
		return fmt.Errorf("oxr: destroy session: %w", err)
	}
	xr.Logger().Info("oxr: session destroyed", "session", s.ID)
	return nil
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed.Load() }
