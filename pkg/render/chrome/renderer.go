package chrome

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/render"
)

// Handle describes a browser started by [Renderer.Start].
type Handle struct {
	PID        int
	ControlURL string
}

// Renderer renders pages in headless Chrome. The zero value is not usable;
// create one with New.
type Renderer struct {
	bin        string
	controlURL string
	noSandbox  bool
	headless   bool
	logger     *log.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

var _ render.Renderer = (*Renderer)(nil)

// New returns a renderer. No browser is started until Start or Render.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{headless: true, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.controlURL != "" {
		if err := errs.ValidateControlURL(r.controlURL); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Start launches a browser owned by r and keeps it for later renders.
// A browser started earlier by r is closed first.
func (r *Renderer) Start(ctx context.Context) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.closeLocked(); err != nil {
		r.logger.Warn("failed to close previous browser", "error", err)
	}

	// The browser outlives ctx; it is stopped by Close.
	browser, l, u, err := r.launch(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	r.browser, r.launcher = browser, l

	h := &Handle{PID: l.PID(), ControlURL: u}
	r.logger.Info("started browser", "pid", h.PID, "url", h.ControlURL)
	return h, nil
}

// Running reports whether a browser started with Start is active.
func (r *Renderer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.browser != nil
}

// Close shuts down the browser started by Start. It is a no-op when none
// is running.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Renderer) closeLocked() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.launcher.Kill()
	r.launcher.Cleanup()
	r.logger.Debug("closed browser", "pid", r.launcher.PID())
	r.browser, r.launcher = nil, nil
	return err
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	browser, release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailure, err, "open page")
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			r.logger.Debug("failed to close page", "error", cerr)
		}
	}()

	data, err := capture(p.Context(ctx), page)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailure, err, "capture page")
	}
	return data, nil
}

// capture loads the page HTML into p and screenshots the viewport with a
// transparent background.
func capture(p *rod.Page, page render.Page) ([]byte, error) {
	err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             page.Width,
		Height:            page.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return nil, err
	}

	transparent := 0.0
	err = proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{A: &transparent},
	}.Call(p)
	if err != nil {
		return nil, err
	}

	if err := p.SetDocumentContent(page.HTML); err != nil {
		return nil, err
	}
	if err := p.WaitLoad(); err != nil {
		return nil, err
	}

	return p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// acquire returns a browser for one render and a func that must be called
// when the render is done.
func (r *Renderer) acquire(ctx context.Context) (*rod.Browser, func(), error) {
	r.mu.Lock()
	owned := r.browser
	r.mu.Unlock()
	if owned != nil {
		return owned, func() {}, nil
	}

	if r.controlURL != "" {
		connCtx, cancel := context.WithCancel(ctx)
		browser := rod.New().Context(connCtx).ControlURL(r.controlURL)
		if err := browser.Connect(); err != nil {
			cancel()
			return nil, nil, errs.Wrap(errs.ErrCodeRenderFailure, err, "connect to %s", r.controlURL)
		}
		// Canceling the connection context drops the websocket and leaves
		// the remote browser running.
		return browser, cancel, nil
	}

	browser, l, _, err := r.launch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return browser, func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug("failed to close browser", "error", err)
		}
		l.Kill()
		l.Cleanup()
	}, nil
}

// launch starts a new browser process bound to ctx and connects to it.
func (r *Renderer) launch(ctx context.Context) (*rod.Browser, *launcher.Launcher, string, error) {
	l := launcher.New().Context(ctx).Headless(r.headless)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	if r.noSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, "", errs.Wrap(errs.ErrCodeRenderFailure, err, "launch browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, nil, "", errs.Wrap(errs.ErrCodeRenderFailure, err, "connect to browser")
	}
	r.logger.Debug("launched browser", "pid", l.PID())
	return browser, l, u, nil
}
