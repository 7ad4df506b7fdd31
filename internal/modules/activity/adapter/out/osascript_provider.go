package out

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dinod/internal/modules/activity/domain"
	activityout "dinod/internal/modules/activity/port/out"
	apperrors "dinod/internal/platform/errors"
)

const osascriptTimeout = 5 * time.Second

const frontmostScript = `tell application "System Events" to get name of first application process whose frontmost is true`

// chromeScript only runs when Chrome is frontmost; errors fall back to an
// app-only signal.
const chromeScript = `tell application "Google Chrome" to get URL of active tab of front window & "\n" & title of active tab of front window`

const safariScript = `tell application "Safari" to get URL of front document & "\n" & name of front document`

// OsascriptProvider samples the foreground application with AppleScript.
// macOS only; other platforms should use the plugin provider.
type OsascriptProvider struct {
	run func(ctx context.Context, script string) (string, error)
}

var _ activityout.Provider = (*OsascriptProvider)(nil)

func NewOsascriptProvider() *OsascriptProvider {
	return &OsascriptProvider{run: runOsascript}
}

func (p *OsascriptProvider) Sample(ctx context.Context) (domain.Signal, error) {
	app, err := p.run(ctx, frontmostScript)
	if err != nil {
		return domain.Signal{}, fmt.Errorf("%w: %v", apperrors.ErrActivityUnavailable, err)
	}
	app = strings.TrimSpace(app)
	if app == "" {
		return domain.Signal{}, apperrors.ErrActivityUnavailable
	}

	sig := domain.Signal{AppName: app}
	lower := strings.ToLower(app)
	var script string
	switch {
	case strings.Contains(lower, "chrome"):
		script = chromeScript
	case strings.Contains(lower, "safari"):
		script = safariScript
	}
	if script == "" {
		return sig, nil
	}

	raw, err := p.run(ctx, script)
	if err != nil {
		// Browser refused the query (no window, automation denied). The
		// app-only signal is still usable.
		return sig, nil
	}
	url, title, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	sig.URL = strings.TrimSpace(url)
	sig.Title = strings.TrimSpace(title)
	return sig, nil
}

func runOsascript(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, osascriptTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return string(out), nil
}
