package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chew-z/screenshot-translator/internal/llama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	states    []string
	slotsErr  error
	code      int
	modelsErr error
	modelsHit int
}

func (f *fakeRuntime) Slots(context.Context) ([]string, error) { return f.states, f.slotsErr }

func (f *fakeRuntime) Models(context.Context) (int, error) {
	f.modelsHit++
	return f.code, f.modelsErr
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		log   string
		probe string
		want  string
	}{
		{"identical", "準備完了", "準備完了", "準備完了"},
		{"different", "エラー検出 (ログ)", "準備完了", "エラー検出 (ログ) / 準備完了"},
		{"no log", "", "実行中", "実行中"},
		{"no probe", "準備完了 (ログより)", "", "準備完了 (ログより)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.log, tt.probe))
		})
	}
}

func TestClassifyLog(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  Kind
		ok    bool
	}{
		{"error beats idle", []string{"slot 0 is idle", "ERROR: cuda oom"}, KindError, true},
		{"loading without idle", []string{"llama_model_loader: Loading model from x.gguf"}, KindLoading, true},
		{"idle overrides loading", []string{"loading model", "all slots are idle"}, KindReady, true},
		{"listening", []string{"main: server is listening on 127.0.0.1:8009"}, KindReachable, true},
		{"http server", []string{"starting the main HTTP server"}, KindReachable, true},
		{"nothing useful", []string{"build info: b1234"}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := ClassifyLog(tt.lines)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, sig.Kind)
				assert.Equal(t, FromLog, sig.Source)
			}
		})
	}
}

func TestReadLog_MissingFile(t *testing.T) {
	_, ok := ReadLog(filepath.Join(t.TempDir(), "absent.log"))
	assert.False(t, ok)
}

func TestReadLog_Directory(t *testing.T) {
	_, ok := ReadLog(t.TempDir())
	assert.False(t, ok)
}

func TestReadLog_OnlyTailIsClassified(t *testing.T) {
	var b strings.Builder
	b.WriteString("fatal error while starting\n")
	for i := 0; i < TailLines; i++ {
		fmt.Fprintf(&b, "slot %d: idle\n", i)
	}
	path := filepath.Join(t.TempDir(), "llama-server.log")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	sig, ok := ReadLog(path)
	require.True(t, ok)
	assert.Equal(t, KindReady, sig.Kind, "the error line fell out of the tail window")
	assert.Equal(t, "準備完了 (ログより)", sig.Render())
}

func TestTail(t *testing.T) {
	lines, err := tail(strings.NewReader("a\nb\r\nc\nd"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, lines)

	lines, err = tail(strings.NewReader("a\nb\n"), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestClassifyStates(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   string
	}{
		{"loading wins", []string{"idle", "active", "loading"}, "モデル読み込み中"},
		{"active", []string{"idle", "active"}, "実行中"},
		{"all idle", []string{"idle", "idle"}, "準備完了"},
		{"unknown sorted", []string{"processing", "idle", "?"}, "状態: ?, idle, processing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := ClassifyStates(tt.states)
			require.True(t, ok)
			assert.Equal(t, tt.want, sig.Render())
		})
	}

	_, ok := ClassifyStates(nil)
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	tests := []struct {
		sig  Signal
		want string
	}{
		{Signal{Kind: KindReachable, Source: FromProbe}, "起動中（API応答あり・モデル読み込み未確認）"},
		{Signal{Kind: KindUnreachable, Source: FromProbe}, "起動中（状態確認待ち）"},
		{Signal{Kind: KindError, Source: FromLog}, "エラー検出 (ログ)"},
		{Signal{Kind: KindLoading, Source: FromLog}, "モデル読み込み中 (ログより)"},
		{Signal{Kind: KindReachable, Source: FromLog}, "起動中（モデル読み込み未確認）(ログより)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sig.Render(), tt.sig.Kind.String())
	}
}

func TestProbe_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		rt         *fakeRuntime
		want       Kind
		wantModels int
	}{
		{"slots ok", &fakeRuntime{states: []string{"idle"}}, KindReady, 0},
		{"slots fail models ok", &fakeRuntime{slotsErr: errors.New("refused"), code: 200}, KindReachable, 1},
		{"slots empty models ok", &fakeRuntime{code: 200}, KindReachable, 1},
		{"models non-200", &fakeRuntime{slotsErr: errors.New("404"), code: 404}, KindUnreachable, 1},
		{"models down", &fakeRuntime{slotsErr: errors.New("refused"), modelsErr: errors.New("refused")}, KindUnreachable, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := NewProber(tt.rt, time.Second).Probe(context.Background())
			assert.Equal(t, tt.want, sig.Kind)
			assert.Equal(t, tt.wantModels, tt.rt.modelsHit)
		})
	}
}

func newLlama(t *testing.T, slots string, modelsCode int) *llama.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slots":
			if slots == "" {
				w.WriteHeader(http.StatusNotImplemented)
				return
			}
			w.Write([]byte(slots))
		case "/v1/models":
			w.WriteHeader(modelsCode)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return llama.NewClient(srv.URL, 5*time.Second)
}

func TestMonitor_IdleSlotsWithoutLog(t *testing.T) {
	client := newLlama(t, `{"slots":[{"state":"idle"},{"state":"idle"}]}`, 200)
	m := NewMonitor(filepath.Join(t.TempDir(), "none.log"), NewProber(client, time.Second))

	assert.Equal(t, "準備完了", m.Status(context.Background()))
}

func TestMonitor_ModelsOnly(t *testing.T) {
	client := newLlama(t, "", 200)
	m := NewMonitor(filepath.Join(t.TempDir(), "none.log"), NewProber(client, time.Second))

	assert.Equal(t, "起動中（API応答あり・モデル読み込み未確認）", m.Status(context.Background()))
}

func TestMonitor_LogAndProbeDisagree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llama-server.log")
	require.NoError(t, os.WriteFile(path, []byte("llama_model_loader: loading model\n"), 0o644))
	client := newLlama(t, `{"slots":[{"state":"active"}]}`, 200)
	m := NewMonitor(path, NewProber(client, time.Second))

	assert.Equal(t, "モデル読み込み中 (ログより) / 実行中", m.Status(context.Background()))
}

func TestMonitor_Unreachable(t *testing.T) {
	client := llama.NewClient("http://127.0.0.1:1", time.Second)
	m := NewMonitor(filepath.Join(t.TempDir(), "none.log"), NewProber(client, time.Second))

	assert.Equal(t, "起動中（状態確認待ち）", m.Status(context.Background()))
}
