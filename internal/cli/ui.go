package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docchat-core/client/internal/docchat/session"
	"github.com/docchat-core/client/internal/tui"
	logx "github.com/docchat-core/client/pkg/logger"
)

// runUI starts the terminal UI. Logs go to the configured file since the
// screen belongs to the UI.
func runUI(ctx context.Context, o *rootOptions) error {
	if o.quiet || o.cfg.LogFile == "" {
		logx.Disable()
	} else {
		f, err := os.OpenFile(o.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logx.Init(logx.LoggerOpts{Environment: o.cfg.Environment, Level: o.cfg.LogLevel, Output: f})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bridge := tui.NewBridge()
	sess, cleanup, err := openSession(ctx, o, session.WithConfirmer(bridge), session.WithNotifier(bridge))
	if err != nil {
		cleanup()
		return err
	}
	// A failed initial listing is shown as a notice inside the UI.
	_ = sess.Start(ctx)

	p := tea.NewProgram(tui.New(ctx, sess, bridge), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	interrupted := ctx.Err() != nil

	// Pending confirmations decline and in-flight calls abort before the session drains.
	cancel()
	cleanup()
	if runErr != nil && !interrupted {
		return runErr
	}
	return nil
}
