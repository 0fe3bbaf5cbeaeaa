package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/db"
	"github.com/jeecollege/collegerag/internal/domain"
)

type mockKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string][]byte{}}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	return m.set(key, value, 0)
}

func (m *mockKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return m.set(key, value, ttl)
}

func (m *mockKV) set(key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.lastTTL = ttl
	m.data[key] = value
	return nil
}

type mockInner struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockInner) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 5}, nil
}

const testTTL = time.Hour

func newTestCache(inner domain.Embedder, kv *mockKV) *CachedEmbedder {
	return New(inner, kv, "", testTTL, nil, zap.NewNop())
}

func TestEmbed_MissThenHit(t *testing.T) {
	kv := newMockKV()
	inner := &mockInner{vec: []float32{0.1, 0.2, 0.3}}
	c := newTestCache(inner, kv)

	ctx := context.Background()

	first, err := c.Embed(ctx, "how is the hostel?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one provider call, got %d", inner.calls)
	}
	if first.TotalTokens != 5 {
		t.Errorf("miss must report provider token usage, got %d", first.TotalTokens)
	}

	second, err := c.Embed(ctx, "how is the hostel?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("second call must hit the cache, provider calls = %d", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hits consume no tokens, got %d", second.TotalTokens)
	}

	if len(second.Embedding) != 3 || second.Embedding[0] != first.Embedding[0] {
		t.Errorf("cached vector does not round-trip: %v vs %v", second.Embedding, first.Embedding)
	}
}

func TestEmbed_EntriesExpire(t *testing.T) {
	kv := newMockKV()
	c := newTestCache(&mockInner{vec: []float32{1}}, kv)

	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Entries carry a TTL; the content-hashed key has no model component,
	// so expiry is what retires stale vectors after a model change.
	if kv.lastTTL != testTTL {
		t.Errorf("cache write TTL = %v, want %v", kv.lastTTL, testTTL)
	}
}

func TestEmbed_ZeroTTLDisablesExpiry(t *testing.T) {
	kv := newMockKV()
	c := New(&mockInner{vec: []float32{1}}, kv, "", 0, nil, zap.NewNop())

	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv.lastTTL != 0 {
		t.Errorf("expected plain Set for zero TTL, got TTL %v", kv.lastTTL)
	}
}

func TestEmbed_KeysUseConfiguredPrefix(t *testing.T) {
	kv := newMockKV()
	c := New(&mockInner{vec: []float32{1}}, kv, "other:", testTTL, nil, zap.NewNop())

	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for key := range kv.data {
		if !strings.HasPrefix(key, "other:emb_cache:") {
			t.Errorf("cache key %q not under the configured prefix", key)
		}
	}
}

func TestEmbed_DefaultPrefix(t *testing.T) {
	kv := newMockKV()
	c := newTestCache(&mockInner{vec: []float32{1}}, kv)

	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for key := range kv.data {
		if !strings.HasPrefix(key, domain.KeyPrefix+"emb_cache:") {
			t.Errorf("cache key %q not under the default prefix", key)
		}
	}
}

func TestEmbed_DifferentTextsDifferentKeys(t *testing.T) {
	kv := newMockKV()
	inner := &mockInner{vec: []float32{1}}
	c := newTestCache(inner, kv)

	ctx := context.Background()
	_, _ = c.Embed(ctx, "question one")
	_, _ = c.Embed(ctx, "question two")

	if inner.calls != 2 {
		t.Errorf("distinct texts must each miss, provider calls = %d", inner.calls)
	}
	if len(kv.data) != 2 {
		t.Errorf("expected 2 cache entries, got %d", len(kv.data))
	}
}

func TestEmbed_ProviderErrorPropagates(t *testing.T) {
	kv := newMockKV()
	provErr := errors.New("provider 500")
	c := newTestCache(&mockInner{err: provErr}, kv)

	_, err := c.Embed(context.Background(), "q")
	if !errors.Is(err, provErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if kv.sets != 0 {
		t.Error("nothing may be cached after a provider failure")
	}
}

func TestEmbed_CacheFailuresNeverFailRequest(t *testing.T) {
	kv := newMockKV()
	kv.getErr = errors.New("store down")
	kv.setErr = errors.New("store down")
	inner := &mockInner{vec: []float32{1}}
	c := newTestCache(inner, kv)

	res, err := c.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache trouble must fall through to the provider: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestVectorEncoding_RoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 3.0, 0}
	got := decodeVector(encodeVector(vec))
	if len(got) != len(vec) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("index %d: %v != %v", i, got[i], vec[i])
		}
	}
}

func TestDecodeVector_Malformed(t *testing.T) {
	if decodeVector(nil) != nil {
		t.Error("nil input must decode to nil")
	}
	if decodeVector([]byte{1, 2, 3}) != nil {
		t.Error("non-multiple-of-4 input must decode to nil")
	}
}
