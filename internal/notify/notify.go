// Package notify is the notification collaborator: a channel that can be
// prepared once and a fire-and-forget notify call. Platform denial (no
// notifier binary, no permission) silently skips delivery rather than
// surfacing an error to scheduling paths.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Notifier interface {
	EnsureChannel() error
	Notify(title, body string) error
}

type Noop struct{}

func (Noop) EnsureChannel() error     { return nil }
func (Noop) Notify(_, _ string) error { return nil }

// Desktop delivers notifications through the platform notifier command
// (notify-send on Linux, osascript on macOS). Missing tooling is detected
// once in EnsureChannel and downgrades every later Notify to a logged skip.
type Desktop struct {
	log *zap.SugaredLogger

	once      sync.Once
	available bool
}

func NewDesktop(log *zap.SugaredLogger) *Desktop {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Desktop{log: log}
}

func (d *Desktop) EnsureChannel() error {
	d.once.Do(func() {
		switch runtime.GOOS {
		case "linux":
			_, err := exec.LookPath("notify-send")
			d.available = err == nil
		case "darwin":
			_, err := exec.LookPath("osascript")
			d.available = err == nil
		default:
			d.available = false
		}
		if !d.available {
			d.log.Warnw("desktop notifications unavailable", "os", runtime.GOOS)
		}
	})
	return nil
}

func (d *Desktop) Notify(title, body string) error {
	if err := d.EnsureChannel(); err != nil {
		return err
	}
	if !d.available {
		d.log.Debugw("notification skipped", "title", title)
		return nil
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		err = exec.Command("osascript", "-e", script).Run()
	}
	if err != nil {
		// Delivery failure is never the caller's problem.
		d.log.Warnw("notification delivery failed", "title", title, "error", err)
	}
	return nil
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
