package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/docchat/session"
	"github.com/docchat-core/client/internal/stubserver"
)

func newDocsCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "docs",
		Aliases: []string{"ls"},
		Short:   "List uploaded documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(cmd.Context(), o, session.WithNotifier(stderrNotifier(cmd.ErrOrStderr())))
			defer cleanup()
			if err != nil {
				return err
			}
			if err := sess.Start(cmd.Context()); err != nil {
				return err
			}
			docs := sess.Documents()
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no documents")
				return nil
			}
			sel, _ := sess.Selected()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tFILENAME")
			for _, d := range docs {
				mark := ""
				if d.ID == sel {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", mark, d.ID, d.Filename)
			}
			return tw.Flush()
		},
	}
}

func newUploadCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(cmd.Context(), o, session.WithNotifier(stderrNotifier(cmd.ErrOrStderr())))
			defer cleanup()
			if err != nil {
				return err
			}
			// A failed initial listing is already reported and does not block the upload.
			_ = sess.Start(cmd.Context())
			if err := sess.Upload(cmd.Context(), args[0]); err != nil {
				return err
			}
			printTranscript(cmd, sess.Messages())
			return nil
		},
	}
}

func newDeleteCommand(o *rootOptions) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParseDocumentID(args[0])
			if err != nil {
				return errx.Validation(fmt.Errorf("invalid document id %q", args[0]))
			}
			confirmer := stdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if assumeYes {
				confirmer = model.ConfirmFunc(func(context.Context, string) bool { return true })
			}
			sess, cleanup, err := openSession(cmd.Context(), o,
				session.WithNotifier(stderrNotifier(cmd.ErrOrStderr())),
				session.WithConfirmer(confirmer))
			defer cleanup()
			if err != nil {
				return err
			}
			_ = sess.Start(cmd.Context())
			return sess.DeleteDocument(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAskCommand(o *rootOptions) *cobra.Command {
	var docID int
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a question about a document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" {
				return errx.Validation(errx.ErrEmptyQuestion)
			}
			sess, cleanup, err := openSession(cmd.Context(), o, session.WithNotifier(stderrNotifier(cmd.ErrOrStderr())))
			defer cleanup()
			if err != nil {
				return err
			}
			if err := sess.Start(cmd.Context()); err != nil {
				return err
			}
			if err := selectDocument(sess, docID); err != nil {
				return err
			}
			if !sess.Ask(cmd.Context(), question) {
				return errx.Validation(errx.ErrNoSelection)
			}
			printLastReply(cmd, sess)
			return nil
		},
	}
	cmd.Flags().IntVarP(&docID, "doc", "d", 0, "document id (defaults to the first document)")
	return cmd
}

func newSummarizeCommand(o *rootOptions) *cobra.Command {
	var docID int
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, cleanup, err := openSession(cmd.Context(), o, session.WithNotifier(stderrNotifier(cmd.ErrOrStderr())))
			defer cleanup()
			if err != nil {
				return err
			}
			if err := sess.Start(cmd.Context()); err != nil {
				return err
			}
			if err := selectDocument(sess, docID); err != nil {
				return err
			}
			if err := sess.Summarize(cmd.Context()); err != nil {
				return err
			}
			printLastReply(cmd, sess)
			return nil
		},
	}
	cmd.Flags().IntVarP(&docID, "doc", "d", 0, "document id (defaults to the first document)")
	return cmd
}

func newStubCommand(o *rootOptions) *cobra.Command {
	var (
		addr string
		cfg  stubserver.Config
	)
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory stand-in for the document service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := stubserver.New(cfg)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(addr) }()
			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				if err := srv.Shutdown(); err != nil {
					return err
				}
				return <-errCh
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", o.cfg.Stub.Addr, "listen address")
	cmd.Flags().DurationVar(&cfg.Latency, "latency", 0, "artificial delay for ask and summarize")
	return cmd
}

func selectDocument(sess *session.Session, id int) error {
	if id == 0 {
		return nil
	}
	if !sess.Select(model.DocumentID(id)) {
		return errx.Validation(fmt.Errorf("%w: document %d is not listed", errx.ErrNoSelection, id))
	}
	return nil
}

func printLastReply(cmd *cobra.Command, sess *session.Session) {
	msgs := sess.Messages()
	if len(msgs) == 0 {
		return
	}
	if last := msgs[len(msgs)-1]; last.Sender == model.SenderBot {
		fmt.Fprintln(cmd.OutOrStdout(), last.Text)
	}
}

func printTranscript(cmd *cobra.Command, msgs []model.Message) {
	for _, m := range msgs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Sender, m.Text)
	}
}
