package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/markdown"
	"github.com/rronkkeli/md2htm/internal/metrics"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	html, ok := s.entries[key]
	return html, ok, nil
}

func (s *fakeStore) Put(_ context.Context, key string, html []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	s.entries[key] = html
	return nil
}

func (s *fakeStore) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }
func (s *fakeStore) Ping(context.Context) error                          { return nil }
func (s *fakeStore) Close() error                                        { return nil }

type fakeRecorder struct {
	metrics.NoopRecorder
	outcomes    []metrics.OutcomeLabel
	cacheEvents []metrics.CacheLabel
}

func (r *fakeRecorder) IncRenderOutcome(o metrics.OutcomeLabel) { r.outcomes = append(r.outcomes, o) }
func (r *fakeRecorder) IncCacheEvent(e metrics.CacheLabel)      { r.cacheEvents = append(r.cacheEvents, e) }

func TestRender_Plain(t *testing.T) {
	svc := New(config.RenderConfig{})

	result, err := svc.Render(testContext(t), []byte("hello *world*"))
	require.NoError(t, err)
	require.Equal(t, "<p>hello <b>world</b></p>", string(result.HTML))
	require.Equal(t, metrics.CacheBypass, result.Cache)
	require.False(t, result.HadFrontmatter)
}

func TestRender_CacheMissThenHit(t *testing.T) {
	store := newFakeStore()
	svc := New(config.RenderConfig{}, WithCache(store))

	first, err := svc.Render(testContext(t), []byte("cached"))
	require.NoError(t, err)
	require.Equal(t, metrics.CacheMiss, first.Cache)
	require.Equal(t, 1, store.puts)

	second, err := svc.Render(testContext(t), []byte("cached"))
	require.NoError(t, err)
	require.Equal(t, metrics.CacheHit, second.Cache)
	require.Equal(t, first.HTML, second.HTML)
	require.Equal(t, 1, store.puts)
}

func TestRender_CacheFailureStillRenders(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("disk gone")
	svc := New(config.RenderConfig{}, WithCache(store))

	result, err := svc.Render(testContext(t), []byte("text"))
	require.NoError(t, err)
	require.Equal(t, metrics.CacheError, result.Cache)
	require.Equal(t, "<p>text</p>", string(result.HTML))
}

func TestRender_DifferentOptionsDoNotShareCacheEntries(t *testing.T) {
	store := newFakeStore()
	plain := New(config.RenderConfig{}, WithCache(store))
	limited := New(config.RenderConfig{MaxDepth: 8}, WithCache(store))

	_, err := plain.Render(testContext(t), []byte("same source"))
	require.NoError(t, err)

	result, err := limited.Render(testContext(t), []byte("same source"))
	require.NoError(t, err)
	require.Equal(t, metrics.CacheMiss, result.Cache)
	require.Equal(t, 2, store.puts)
}

func TestRender_StripFrontmatter(t *testing.T) {
	svc := New(config.RenderConfig{StripFrontmatter: true})
	src := []byte("---\ntitle: Release notes\n---\n# Title\n")

	result, err := svc.Render(testContext(t), src)
	require.NoError(t, err)
	require.True(t, result.HadFrontmatter)
	require.Equal(t, "Release notes", result.Meta.Title)
	require.Equal(t, "<h1>Title</h1>", string(result.HTML))
}

func TestRender_FrontmatterDisabledRendersDelimiters(t *testing.T) {
	svc := New(config.RenderConfig{})
	src := []byte("---\ntitle: x\n---\nbody")

	result, err := svc.Render(testContext(t), src)
	require.NoError(t, err)
	require.False(t, result.HadFrontmatter)
	require.Equal(t, "<p>--- title: x --- body</p>", string(result.HTML))
}

func TestRender_MalformedFrontmatterRendersAsContent(t *testing.T) {
	svc := New(config.RenderConfig{StripFrontmatter: true})
	src := []byte("---\ntitle: [unclosed\n---\nbody\n")

	result, err := svc.Render(testContext(t), src)
	require.NoError(t, err)
	require.False(t, result.HadFrontmatter)
	require.Contains(t, string(result.HTML), "title: [unclosed")
}

func TestRender_Sanitize(t *testing.T) {
	svc := New(config.RenderConfig{Sanitize: true})

	result, err := svc.Render(testContext(t), []byte("a<script>alert(1)</script>b"))
	require.NoError(t, err)
	require.Equal(t, "<p>ab</p>", string(result.HTML))
}

func TestRender_DepthError(t *testing.T) {
	svc := New(config.RenderConfig{MaxDepth: 4})

	_, err := svc.Render(testContext(t), []byte("_*_*"))
	var depthErr *markdown.DepthError
	require.ErrorAs(t, err, &depthErr)
	require.Equal(t, 4, depthErr.Limit)
	require.Equal(t, byte('*'), depthErr.Marker)
}

func TestRender_RecorderObservesOutcomes(t *testing.T) {
	rec := &fakeRecorder{}
	svc := New(config.RenderConfig{MaxDepth: 4}, WithRecorder(rec))

	_, err := svc.Render(testContext(t), []byte("fine"))
	require.NoError(t, err)

	_, err = svc.Render(testContext(t), []byte("_*_*"))
	require.Error(t, err)

	require.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSuccess, metrics.OutcomeDepth}, rec.outcomes)
	require.Equal(t, []metrics.CacheLabel{metrics.CacheBypass, metrics.CacheBypass}, rec.cacheEvents)
}
