package tui

import (
	"context"
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/docchat/remote"
	"github.com/docchat-core/client/internal/docchat/session"
	"github.com/docchat-core/client/internal/stubserver"
	logx "github.com/docchat-core/client/pkg/logger"
)

func newTestModel(t *testing.T, files ...string) (Model, *stubserver.Server) {
	t.Helper()
	logx.Disable()
	srv := stubserver.New(stubserver.Config{})
	srv.Seed(files...)
	client := remote.New(model.RemoteConfig{BaseURL: "http://stub", Timeout: time.Second},
		remote.WithHTTPClient(&http.Client{Transport: srv.Transport()}))

	bridge := NewBridge()
	sess := session.New(client, session.WithConfirmer(bridge), session.WithNotifier(bridge))
	require.NoError(t, sess.Start(context.Background()))
	t.Cleanup(sess.Close)
	return New(context.Background(), sess, bridge), srv
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next
	}
	return m
}

func TestUpdate_WindowSize(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	result := next.(Model)
	assert.Equal(t, 120, result.width)
	assert.Equal(t, 32, result.viewport.Height)

	assert.NotPanics(t, func() { _, _ = m.Update(tea.WindowSizeMsg{Width: -1, Height: -1}) })
}

func TestTypingSetsComposing(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf")
	m = typeText(m, "hi")

	assert.Equal(t, "hi", m.sess.Input())
	assert.Equal(t, model.IndicatorComposing, m.sess.Indicator())
	assert.Contains(t, m.View(), "User is typing...")
}

func TestTypingIgnoredWithoutDocuments(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(m, "hi")
	assert.Empty(t, m.sess.Input())

	next, _ := m.Update(opDoneMsg{})
	assert.Contains(t, next.View(), model.EmptyTranscriptText)
}

func TestEnterAsksSelectedDocument(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf")
	m = typeText(m, "What is X?")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	assert.IsType(t, opDoneMsg{}, cmd())

	assert.Equal(t, []model.Message{
		model.UserMessage("What is X?"),
		model.BotMessage(stubserver.Answer("a.pdf", "What is X?", model.English)),
	}, m.sess.Messages())

	next, _ := m.Update(opDoneMsg{})
	assert.Contains(t, next.View(), "you: ")
}

func TestEnterSendsQuestionTypedBeforeEnter(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf")
	m = typeText(m, "What is X?")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = typeText(m, "zz")
	assert.Equal(t, "zz", m.sess.Input())

	cmd()
	msgs := m.sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.UserMessage("What is X?"), msgs[0])
	assert.Equal(t, model.BotMessage(stubserver.Answer("a.pdf", "What is X?", model.English)), msgs[1])
}

func TestEnterWithBlankInputDoesNothing(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf")
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.sess.Messages())
}

func TestSummarizeKey(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf")
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	cmd()

	last := m.sess.Messages()
	require.Len(t, last, 1)
	assert.Equal(t, model.SummaryPrefix+stubserver.Summary("a.pdf", 0, model.English), last[0].Text)
}

func TestTabCyclesDocumentsAndLanguage(t *testing.T) {
	m, _ := newTestModel(t, "a.pdf", "b.pdf")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	doc, _ := m.sess.SelectedDocument()
	assert.Equal(t, "b.pdf", doc.Filename)
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	doc, _ = m.sess.SelectedDocument()
	assert.Equal(t, "a.pdf", doc.Filename)
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftTab})
	doc, _ = m.sess.SelectedDocument()
	assert.Equal(t, "b.pdf", doc.Filename)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, model.Hindi, m.sess.Language())
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, model.English, m.sess.Language())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	for _, tc := range []struct {
		key      string
		wantDocs int
	}{
		{key: "y", wantDocs: 1},
		{key: "n", wantDocs: 2},
	} {
		t.Run(tc.key, func(t *testing.T) {
			m, _ := newTestModel(t, "a.pdf", "b.pdf")

			m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
			require.NotNil(t, cmd)
			done := make(chan tea.Msg)
			go func() { done <- cmd() }()

			next, _ := m.Update(m.bridge.waitForConfirm()())
			m = next.(Model)
			assert.Equal(t, InputModeConfirm, m.mode)
			assert.Contains(t, m.View(), "Are you sure you want to delete this document?")

			next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tc.key)})
			m = next.(Model)
			assert.Equal(t, InputModeChat, m.mode)
			<-done

			assert.Len(t, m.sess.Documents(), tc.wantDocs)
		})
	}
}

func TestNoticeIsShown(t *testing.T) {
	m, _ := newTestModel(t)
	m.bridge.Notify(model.Notice{Level: model.NoticeError, Text: model.SelectDocumentNotice})

	next, _ := m.Update(m.bridge.waitForNotice()())
	assert.Contains(t, next.View(), model.SelectDocumentNotice)
}

func TestUploadPathMode(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Equal(t, InputModeUploadPath, m.mode)
	m = typeText(m, "notes.txt")
	assert.Empty(t, m.sess.Input(), "path typing must not count as composing")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, InputModeChat, m.mode)
	require.NotNil(t, cmd)
	cmd()
	assert.Empty(t, m.sess.Documents())

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	m, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, InputModeChat, m.mode)
}

func TestBridgeConfirmHonoursContext(t *testing.T) {
	b := NewBridge()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, b.Confirm(ctx, "delete?"))
}
