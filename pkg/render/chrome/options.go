package chrome

import (
	"github.com/charmbracelet/log"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithBin sets the Chrome executable. By default the launcher looks for a
// local install and downloads Chromium when none is found.
func WithBin(path string) Option {
	return func(r *Renderer) { r.bin = path }
}

// WithControlURL makes the renderer connect to an already running browser
// at the given DevTools endpoint instead of launching one.
func WithControlURL(u string) Option {
	return func(r *Renderer) { r.controlURL = u }
}

// WithNoSandbox disables the Chrome sandbox, required when running as root
// in most containers.
func WithNoSandbox() Option {
	return func(r *Renderer) { r.noSandbox = true }
}

// WithHeadful shows the browser window. Useful for debugging only.
func WithHeadful() Option {
	return func(r *Renderer) { r.headless = false }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
