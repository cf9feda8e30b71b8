package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/ports"
)

// defaultBrowser selects the platform's URL handler
const defaultBrowser = "default"

// Browser is a way of opening a URL on the current platform
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// Launcher implements the BrowserLauncher interface
type Launcher struct {
	preferred string
	browsers  []Browser
	lookPath  func(file string) (string, error)
	start     func(name string, args ...string) error
	log       *zap.Logger
}

// NewLauncher creates a launcher honoring cfg.Browser ("default", "chrome",
// "firefox", "safari" or "edge")
func NewLauncher(cfg entities.BrowserConfig, log *zap.Logger) *Launcher {
	if log == nil {
		log = zap.NewNop()
	}
	preferred := strings.ToLower(strings.TrimSpace(cfg.Browser))
	if preferred == "" {
		preferred = defaultBrowser
	}
	return &Launcher{
		preferred: preferred,
		browsers:  platformBrowsers(runtime.GOOS),
		lookPath:  exec.LookPath,
		start:     startDetached,
		log:       log.Named("browser"),
	}
}

// Launch opens url in the selected browser without waiting for it to exit
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(url)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	l.log.Debug("browser launched", zap.String("browser", browser.Name), zap.String("url", url))
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the preferred browser when installed, falling back to
// the first available entry in platform order
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers available")
	}

	if l.preferred != defaultBrowser {
		for i := range l.browsers {
			candidate := &l.browsers[i]
			if strings.EqualFold(candidate.Name, l.preferred) && l.available(candidate) {
				return candidate, nil
			}
		}
		l.log.Warn("configured browser not found, using system default", zap.String("browser", l.preferred))
	}

	for i := range l.browsers {
		if l.available(&l.browsers[i]) {
			return &l.browsers[i], nil
		}
	}

	return nil, errors.New("no supported browsers found on this system")
}

func (l *Launcher) available(b *Browser) bool {
	_, err := l.lookPath(b.Command)
	return err == nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed platform table
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func urlOnly(url string) []string {
	return []string{url}
}

// platformBrowsers lists the launch commands for goos, system default first
func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		openApp := func(app string) func(string) []string {
			return func(url string) []string { return []string{"-a", app, url} }
		}
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: openApp("Google Chrome")},
			{Name: "Safari", Command: "open", Args: openApp("Safari")},
			{Name: "Firefox", Command: "open", Args: openApp("Firefox")},
		}
	case "linux":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		start := func(app string) func(string) []string {
			return func(url string) []string { return []string{"/c", "start", app, url} }
		}
		return []Browser{
			{Name: "Default", Command: "cmd", Args: func(url string) []string { return []string{"/c", "start", "", url} }},
			{Name: "Chrome", Command: "cmd", Args: start("chrome")},
			{Name: "Edge", Command: "cmd", Args: start("msedge")},
		}
	default:
		return nil
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
