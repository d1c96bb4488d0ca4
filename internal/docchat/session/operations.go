package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

// Refresh reloads the document list. On failure the previous list is kept and
// the user is notified.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.registry.Refresh(ctx); err != nil {
		s.notify(model.NoticeError, model.FetchFailedNotice)
		return err
	}
	return nil
}

// Upload sends the PDF at path to the remote service. The name must end in
// ".pdf" exactly; anything else fails before any IO or network call. On success
// the transcript is replaced by a confirmation and the document list refreshed.
func (s *Session) Upload(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".pdf") {
		s.notify(model.NoticeError, model.NotPDFNotice)
		return errx.Validation(fmt.Errorf("%w: %s", errx.ErrNotPDF, name))
	}

	f, err := openRegular(path)
	if err != nil {
		s.notify(model.NoticeError, model.NotPDFNotice)
		return err
	}
	defer f.Close()

	release, err := s.acquire(flagUploading)
	if err != nil {
		s.notifyBusy(err)
		return err
	}
	defer release()

	logx.Info().Str("sessionID", s.id).Str("filename", name).Msg("uploading document")
	res, err := s.remote.UploadDocument(ctx, name, f)
	if err != nil {
		logx.Error().Err(err).Str("filename", name).Msg("upload failed")
		s.notify(model.NoticeError, model.UploadFailedNotice)
		return errx.Upload(err)
	}

	filename := name
	if res != nil && res.Filename != "" {
		filename = res.Filename
	}
	s.transcript.Reset(model.BotMessage(model.UploadedText(filename)))
	s.registry.Invalidate()

	// The refresh failure is already reported; the upload itself succeeded.
	_ = s.Refresh(ctx)
	return nil
}

func openRegular(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errx.Validation(fmt.Errorf("%w: %s", errx.ErrFileMissing, path))
		}
		return nil, errx.Validation(err)
	}
	if !info.Mode().IsRegular() {
		return nil, errx.Validation(fmt.Errorf("%w: %s is not a regular file", errx.ErrFileMissing, path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.Validation(err)
	}
	return f, nil
}

// Ask appends the question to the transcript, sends it for the selected
// document and appends exactly one bot reply: the answer, or a generic error
// text when the call fails. It does nothing and reports false when the question
// is blank or no document is selected.
func (s *Session) Ask(ctx context.Context, question string) bool {
	if !hasText(question) {
		return false
	}
	docID, ok := s.registry.Selected()
	if !ok {
		return false
	}
	lang := s.prefs.Language()

	s.transcript.Append(model.UserMessage(question))

	release, err := s.acquire(flagAsking)
	if err != nil {
		logx.Warn().Err(err).Msg("ask rejected")
		s.transcript.Append(model.BotMessage(model.AskFailedText))
		return true
	}
	defer release()

	s.mu.Lock()
	s.input = ""
	s.flags.Composing = false
	s.mu.Unlock()

	logx.Debug().Str("sessionID", s.id).Int("docID", int(docID)).Str("language", lang.String()).Msg("asking")
	answer, err := s.remote.Ask(ctx, docID, question, lang)
	if err != nil {
		logx.Error().Err(err).Int("docID", int(docID)).Msg("ask failed")
		s.transcript.Append(model.BotMessage(model.AskFailedText))
		return true
	}
	s.transcript.Append(model.BotMessage(answer))
	return true
}

// Submit asks the current input buffer. It is ignored while an ask is pending.
func (s *Session) Submit(ctx context.Context) bool {
	s.mu.Lock()
	q, asking := s.input, s.flags.Asking
	s.mu.Unlock()
	if asking {
		return false
	}
	return s.Ask(ctx, q)
}

// Summarize requests a summary of the selected document and appends it, or a
// generic error text, to the transcript. Without a selection it only notifies.
func (s *Session) Summarize(ctx context.Context) error {
	docID, ok := s.registry.Selected()
	if !ok {
		s.notify(model.NoticeError, model.SelectDocumentNotice)
		return errx.Validation(errx.ErrNoSelection)
	}
	lang := s.prefs.Language()

	release, err := s.acquire(flagSummarizing)
	if err != nil {
		return err
	}
	defer release()

	logx.Debug().Str("sessionID", s.id).Int("docID", int(docID)).Str("language", lang.String()).Msg("summarizing")
	summary, err := s.remote.Summarize(ctx, docID, lang)
	if err != nil {
		logx.Error().Err(err).Int("docID", int(docID)).Msg("summarize failed")
		s.transcript.Append(model.BotMessage(model.SummarizeFailedText))
		return nil
	}
	s.transcript.Append(model.BotMessage(model.SummaryPrefix + summary))
	return nil
}

// DeleteDocument removes a document after the confirmer agrees. A declined
// confirmation is not an error and issues no call. On success the document
// leaves the registry, the transcript is cleared and the list refreshed.
func (s *Session) DeleteDocument(ctx context.Context, id model.DocumentID) error {
	if !s.confirmer.Confirm(ctx, deletePrompt) {
		logx.Debug().Int("docID", int(id)).Msg("delete declined")
		return nil
	}

	release, err := s.acquire(flagDeleting)
	if err != nil {
		s.notifyBusy(err)
		return err
	}
	defer release()

	if err := s.remote.DeleteDocument(ctx, id); err != nil {
		logx.Error().Err(err).Int("docID", int(id)).Msg("delete failed")
		s.notify(model.NoticeError, model.DeleteFailedNotice)
		return errx.Delete(err)
	}

	s.registry.Remove(id)
	s.transcript.Clear()
	s.notify(model.NoticeInfo, model.DeletedNotice)

	_ = s.Refresh(ctx)
	return nil
}

// DeleteSelected deletes the currently selected document.
func (s *Session) DeleteSelected(ctx context.Context) error {
	id, ok := s.registry.Selected()
	if !ok {
		s.notify(model.NoticeError, model.SelectDocumentNotice)
		return errx.Validation(errx.ErrNoSelection)
	}
	return s.DeleteDocument(ctx, id)
}

func (s *Session) notifyBusy(err error) {
	if errors.Is(err, errx.ErrBusy) {
		s.notify(model.NoticeError, model.BusyNotice)
	}
}
