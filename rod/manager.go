package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// BrowserManager owns the browser a harvest runs in. It either launches a
// local Chrome, optionally with a persistent profile so that a logged-in
// session survives restarts, or attaches to a running one.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	mu       sync.Mutex
	closed   atomic.Bool

	headless    bool
	userDataDir string
	remoteURL   string
	stealth     bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithHeadless sets whether a launched browser runs without a window.
// Defaults to true. Logging in to a host page requires a window.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithUserDataDir launches the browser with a persistent profile directory.
func WithUserDataDir(dir string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.userDataDir = dir
	}
}

// WithRemoteURL attaches to a browser started with remote debugging
// instead of launching one. Both DevTools WebSocket URLs and
// http://host:port addresses are accepted.
func WithRemoteURL(u string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.remoteURL = u
	}
}

// WithStealth sets whether new pages hide common automation markers.
// Defaults to true.
func WithStealth(enabled bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.stealth = enabled
	}
}

// NewBrowserManager launches or attaches to a browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		headless: true,
		stealth:  true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.connect(); err != nil {
		return nil, err
	}
	return bm, nil
}

// Browser returns the managed browser.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.browser
}

// NewPage opens a blank page bound to ctx.
func (bm *BrowserManager) NewPage(ctx context.Context) (*rod.Page, error) {
	b := bm.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser closed")
	}

	var (
		page *rod.Page
		err  error
	)
	if bm.stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	return page.Context(ctx), nil
}

// Close releases browser resources. An attached browser is disconnected,
// not shut down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	var err error
	if bm.browser != nil {
		if bm.launcher != nil {
			err = bm.browser.Close()
		}
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

func (bm *BrowserManager) connect() error {
	u := bm.remoteURL
	if u != "" {
		resolved, err := launcher.ResolveURL(u)
		if err != nil {
			return fmt.Errorf("resolving browser URL: %w", err)
		}
		u = resolved
	} else {
		lnchr := launcher.New().
			Set("disable-background-timer-throttling").
			Set("disable-backgrounding-occluded-windows").
			Set("disable-renderer-backgrounding").
			Set("disable-dev-shm-usage").
			Set("disable-blink-features", "AutomationControlled").
			Leakless(true).
			Headless(bm.headless)
		if bm.userDataDir != "" {
			lnchr = lnchr.UserDataDir(bm.userDataDir)
		}

		launched, err := lnchr.Launch()
		if err != nil {
			return fmt.Errorf("launching browser: %w", err)
		}
		bm.launcher = lnchr
		u = launched
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		if bm.launcher != nil {
			bm.launcher.Kill()
			bm.launcher = nil
		}
		return fmt.Errorf("connecting to browser: %w", err)
	}
	bm.browser = browser
	return nil
}

// LauncherPID returns the process ID of the browser launcher, or zero when
// attached to a remote browser.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
