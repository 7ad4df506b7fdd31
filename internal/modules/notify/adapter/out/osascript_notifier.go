package out

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dinod/internal/modules/notify/domain"
	notifyout "dinod/internal/modules/notify/port/out"
)

const notifyTimeout = 5 * time.Second

// OsascriptNotifier posts native macOS notifications.
type OsascriptNotifier struct {
	run func(ctx context.Context, script string) error
}

var _ notifyout.Notifier = (*OsascriptNotifier)(nil)

func NewOsascriptNotifier() *OsascriptNotifier {
	return &OsascriptNotifier{run: runOsascript}
}

func (n *OsascriptNotifier) Notify(ctx context.Context, _ domain.EventKind, title, subtitle, body string) error {
	script := fmt.Sprintf(
		"display notification %s with title %s subtitle %s",
		quote(body), quote(title), quote(subtitle),
	)
	if err := n.run(ctx, script); err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	return nil
}

// quote produces an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func runOsascript(ctx context.Context, script string) error {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	return exec.CommandContext(ctx, "osascript", "-e", script).Run()
}
