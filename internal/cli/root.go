// Package cli wires the docchat commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/docchat/remote"
	"github.com/docchat-core/client/internal/docchat/repo"
	"github.com/docchat-core/client/internal/docchat/session"
	"github.com/docchat-core/client/internal/stubserver"
	logx "github.com/docchat-core/client/pkg/logger"
)

type rootOptions struct {
	cfg    *AppConfig
	inStub bool
	quiet  bool
	lang   string
	// stubSrv backs --stub; tests preload it.
	stubSrv *stubserver.Server
}

// NewRootCommand builds the command tree over cfg. Flags override cfg values.
func NewRootCommand(cfg *AppConfig) *cobra.Command {
	return newRootCommand(&rootOptions{cfg: cfg})
}

func newRootCommand(o *rootOptions) *cobra.Command {
	cfg := o.cfg

	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your uploaded PDF documents",
		Long: `docchat manages the documents stored on a question-answering service and
holds a conversation about the selected one.

Run without arguments to start the interactive terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.lang != "" {
				lang, err := model.ParseLanguage(o.lang)
				if err != nil {
					return err
				}
				cfg.Session.Language = lang
			}
			// The UI installs its own file logger.
			if cmd.Name() == "docchat" {
				return nil
			}
			if o.quiet {
				logx.Disable()
				return nil
			}
			logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), o)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Remote.BaseURL, "url", cfg.Remote.BaseURL, "base URL of the document service")
	flags.DurationVar(&cfg.Remote.Timeout, "timeout", cfg.Remote.Timeout, "per-request timeout")
	flags.StringVar(&cfg.Session.ID, "session", cfg.Session.ID, "session id; reuses a journaled transcript when Redis is configured")
	flags.StringVar(&o.lang, "lang", "", "answer language: english, hindi or telugu")
	flags.BoolVar(&o.inStub, "stub", false, "talk to an in-process stub service instead of --url")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "suppress logs")

	root.AddCommand(
		newDocsCommand(o),
		newUploadCommand(o),
		newDeleteCommand(o),
		newAskCommand(o),
		newSummarizeCommand(o),
		newStubCommand(o),
	)
	return root
}

// openSession builds a session wired to the configured remote and, when Redis
// is configured, the transcript journal. The returned func releases everything
// and is safe to call on error. The session is not started.
func openSession(ctx context.Context, o *rootOptions, extra ...session.Option) (*session.Session, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var remoteOpts []remote.Option
	if o.inStub {
		if o.stubSrv == nil {
			o.stubSrv = stubserver.New(stubserver.Config{})
		}
		remoteOpts = append(remoteOpts, remote.WithHTTPClient(&http.Client{
			Transport: o.stubSrv.Transport(),
			Timeout:   o.cfg.Remote.Timeout,
		}))
	}
	client := remote.New(o.cfg.Remote, remoteOpts...)

	opts := []session.Option{
		session.WithID(o.cfg.Session.ID),
		session.WithLanguage(o.cfg.Session.Language),
	}
	if o.cfg.Redis.Enabled() {
		rdb, err := o.cfg.Redis.New(ctx)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, session.WithJournal(repo.NewRedisTranscriptRepository(rdb, o.cfg.Session.TTL)))
	}

	sess := session.New(client, append(opts, extra...)...)
	closers = append(closers, sess.Close)
	return sess, cleanup, nil
}

// stderrNotifier prints notices for one-shot commands.
func stderrNotifier(w io.Writer) model.Notifier {
	return model.NotifyFunc(func(n model.Notice) {
		fmt.Fprintln(w, n.Text)
	})
}

// stdinConfirmer asks on the terminal. Anything but y/yes declines.
func stdinConfirmer(in io.Reader, out io.Writer) model.Confirmer {
	reader := bufio.NewReader(in)
	return model.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}
