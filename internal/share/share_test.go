package share

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/session"
)

func export() *report.Export {
	return &report.Export{
		ReportID:    "r-1",
		Filename:    "transaction-report-20240210-093000.html",
		ContentType: "text/html; charset=utf-8",
		Data:        []byte("<html></html>"),
	}
}

func TestDirSharer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewDirSharer(dir)
	require.NoError(t, err)

	require.NoError(t, s.Share(context.Background(), export()))

	data, err := os.ReadFile(filepath.Join(dir, "transaction-report-20240210-093000.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestDirSharerStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirSharer(dir)
	require.NoError(t, err)

	exp := export()
	exp.Filename = "../../escape.html"
	require.NoError(t, s.Share(context.Background(), exp))

	_, err = os.Stat(filepath.Join(dir, "escape.html"))
	assert.NoError(t, err)
}

func TestDirSharerCancelled(t *testing.T) {
	s, err := NewDirSharer(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Share(ctx, export()), context.Canceled)
}

func TestDisabled(t *testing.T) {
	assert.ErrorIs(t, Disabled{}.Share(context.Background(), export()), ErrNotConfigured)
}

func TestNew(t *testing.T) {
	s, err := New(config.ShareConfig{Driver: "none"}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, s)

	dir := t.TempDir()
	s, err = New(config.ShareConfig{Driver: "dir", Dir: dir}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &DirSharer{Dir: dir}, s)

	_, err = New(config.ShareConfig{Driver: "ftp"}, nil, nil)
	assert.Error(t, err)
}

func TestPublishing(t *testing.T) {
	now := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	p := Publishing(export(), now)

	assert.Equal(t, "r-1", p.MessageId)
	assert.Equal(t, amqp091.Persistent, p.DeliveryMode)
	assert.Equal(t, "text/html; charset=utf-8", p.ContentType)
	assert.Equal(t, "transaction-report-20240210-093000.html", p.Headers["filename"])
	assert.Equal(t, []byte("<html></html>"), p.Body)
	assert.Equal(t, now, p.Timestamp)
}

type fakeChannel struct {
	exchange string
	key      string
	msgs     []amqp091.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSharerShare(t *testing.T) {
	now := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	ch := &fakeChannel{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s := newAMQPSharer(nil, ch, "expense-reports", "report.generated", session.FixedClock{T: now}, logger)
	require.NoError(t, s.Share(context.Background(), export()))

	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "expense-reports", ch.exchange)
	assert.Equal(t, "report.generated", ch.key)
	assert.Equal(t, now, ch.msgs[0].Timestamp)
	assert.Equal(t, "r-1", ch.msgs[0].MessageId)
	assert.Contains(t, logs.String(), "Published report")
	assert.Contains(t, logs.String(), "component=share")
	assert.Contains(t, logs.String(), "report_id=r-1")

	ch.err = errors.New("channel closed")
	assert.ErrorIs(t, s.Share(context.Background(), export()), ch.err)

	require.NoError(t, s.Close())
	assert.True(t, ch.closed)
}
