// Package chrome renders composite pages with headless Chrome over the
// DevTools protocol (go-rod).
//
// # Lifecycle
//
// A [Renderer] supports three ways of getting a browser:
//
//   - Per call (default): every Render launches a fresh browser and tears it
//     down when the render is done.
//   - Owned persistent: [Renderer.Start] launches one browser that every
//     later Render reuses until [Renderer.Close]. Starting again first closes
//     the running instance, so at most one is live per Renderer.
//   - Remote: [WithControlURL] connects to a browser someone else started.
//     The renderer disconnects after each render and never kills it.
//
// Each Render opens its own page and closes it before returning, even when
// the screenshot fails, so concurrent calls can share one browser.
//
//	r, err := chrome.New(chrome.WithLogger(logger))
//	handle, err := r.Start(ctx)
//	defer r.Close()
//	png, err := r.Render(ctx, page)
package chrome
