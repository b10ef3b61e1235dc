package lookup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
)

const heartResponse = `[{"meta":{"id":"heart:1"},"hom":1,"hwi":{"hw":"heart"},` +
	`"def":[{"sseq":[[["sense",{"dt":[["text","{bc}a hollow muscular organ"]]}]]]}]}]`

type fetcherMock struct {
	responses map[string]string
	errs      map[string]error
	calls     int32
	started   chan struct{}
	release   chan struct{}
}

func (f *fetcherMock) Fetch(_ context.Context, word string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if err, ok := f.errs[word]; ok {
		return nil, err
	}
	data, ok := f.responses[word]
	if !ok {
		return []byte(`[]`), nil
	}
	return []byte(data), nil
}

type stemmerMock map[string]string

func (s stemmerMock) Stem(word string) string {
	if stem, ok := s[word]; ok {
		return stem
	}
	return word
}

type failingCache struct{}

func (failingCache) GetCached(string) ([]byte, error) { return nil, errors.New("FAIL") }
func (failingCache) SaveCached(string, []byte) error  { return errors.New("FAIL") }

func TestLookup(t *testing.T) {
	t.Run("fetch and cache", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		fetcher := &fetcherMock{responses: map[string]string{"heart": heartResponse}}
		service := NewService(cache, fetcher, nil)

		res, err := service.Lookup(context.Background(), "  Heart ")
		require.NoError(t, err)
		assert.Equal(t, "heart", res.Word)
		assert.Equal(t, "heart:1", res.Entries.ID())
		assert.Equal(t, []byte(heartResponse), res.Raw)
		assert.False(t, res.HasSuggestions())

		cached, err := cache.GetCached("heart")
		require.NoError(t, err)
		assert.Equal(t, []byte(heartResponse), cached)

		_, err = service.Lookup(context.Background(), "heart")
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
	})
	t.Run("cache hit", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		require.NoError(t, cache.SaveCached("heart", []byte(heartResponse)))
		fetcher := &fetcherMock{}
		service := NewService(cache, fetcher, nil)

		res, err := service.Lookup(context.Background(), "heart")
		require.NoError(t, err)
		assert.Equal(t, "heart", res.Entries.Headword())
		assert.Equal(t, int32(0), fetcher.calls)
	})
	t.Run("invalid cache is refetched", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		require.NoError(t, cache.SaveCached("heart", []byte("NOT_JSON")))
		fetcher := &fetcherMock{responses: map[string]string{"heart": heartResponse}}
		service := NewService(cache, fetcher, nil)

		res, err := service.Lookup(context.Background(), "heart")
		require.NoError(t, err)
		assert.Equal(t, "heart:1", res.Entries.ID())
		cached, err := cache.GetCached("heart")
		require.NoError(t, err)
		assert.Equal(t, []byte(heartResponse), cached)
	})
	t.Run("cache errors are not fatal", func(t *testing.T) {
		fetcher := &fetcherMock{responses: map[string]string{"heart": heartResponse}}
		service := NewService(failingCache{}, fetcher, nil)

		res, err := service.Lookup(context.Background(), "heart")
		require.NoError(t, err)
		assert.Equal(t, "heart:1", res.Entries.ID())
	})
	t.Run("suggestions are not cached", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		fetcher := &fetcherMock{responses: map[string]string{"colr": `["color","colour"]`}}
		service := NewService(cache, fetcher, nil)

		res, err := service.Lookup(context.Background(), "colr")
		require.NoError(t, err)
		assert.True(t, res.HasSuggestions())
		assert.Equal(t, []string{"color", "colour"}, res.Suggestions)
		_, err = cache.GetCached("colr")
		assert.ErrorIs(t, err, db.ErrNotFound)
	})
	t.Run("empty response", func(t *testing.T) {
		service := NewService(db.NewInMemoryStorage(), &fetcherMock{}, nil)
		_, err := service.Lookup(context.Background(), "qwerty")
		assert.ErrorIs(t, err, ErrNoResult)
	})
	t.Run("empty word", func(t *testing.T) {
		fetcher := &fetcherMock{}
		service := NewService(db.NewInMemoryStorage(), fetcher, nil)
		_, err := service.Lookup(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Equal(t, int32(0), fetcher.calls)
	})
	t.Run("not found", func(t *testing.T) {
		fetcher := &fetcherMock{errs: map[string]error{"heart": merriamwebster.ErrNotFound}}
		service := NewService(db.NewInMemoryStorage(), fetcher, nil)
		_, err := service.Lookup(context.Background(), "heart")
		assert.ErrorIs(t, err, ErrNoResult)
		assert.ErrorIs(t, err, merriamwebster.ErrNotFound)
	})
	t.Run("network error", func(t *testing.T) {
		fetcher := &fetcherMock{errs: map[string]error{"heart": context.DeadlineExceeded}}
		service := NewService(db.NewInMemoryStorage(), fetcher, nil)
		_, err := service.Lookup(context.Background(), "heart")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, ErrNoResult)
	})
	t.Run("decode error", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		fetcher := &fetcherMock{responses: map[string]string{"heart": `{"error":"bad key"}`}}
		service := NewService(cache, fetcher, nil)
		_, err := service.Lookup(context.Background(), "heart")
		assert.ErrorIs(t, err, merriamwebster.ErrDecode)
		_, err = cache.GetCached("heart")
		assert.ErrorIs(t, err, db.ErrNotFound)
	})
}

func TestLookupStemming(t *testing.T) {
	t.Run("stem", func(t *testing.T) {
		fetcher := &fetcherMock{responses: map[string]string{"heart": heartResponse}}
		service := NewService(db.NewInMemoryStorage(), fetcher, stemmerMock{"hearts": "heart"})

		res, err := service.Lookup(context.Background(), "hearts")
		require.NoError(t, err)
		assert.Equal(t, "heart", res.Word)
		assert.Equal(t, int32(1), fetcher.calls)
	})
	t.Run("fallback to word", func(t *testing.T) {
		fetcher := &fetcherMock{responses: map[string]string{"hearts": heartResponse}}
		service := NewService(db.NewInMemoryStorage(), fetcher, stemmerMock{"hearts": "heart"})

		res, err := service.Lookup(context.Background(), "hearts")
		require.NoError(t, err)
		assert.Equal(t, "hearts", res.Word)
		assert.Equal(t, int32(2), fetcher.calls)
	})
	t.Run("fallback on stem error", func(t *testing.T) {
		fetcher := &fetcherMock{
			responses: map[string]string{"hearts": heartResponse},
			errs:      map[string]error{"heart": errors.New("FAIL")},
		}
		service := NewService(db.NewInMemoryStorage(), fetcher, stemmerMock{"hearts": "heart"})

		res, err := service.Lookup(context.Background(), "hearts")
		require.NoError(t, err)
		assert.Equal(t, "hearts", res.Word)
	})
	t.Run("snowball", func(t *testing.T) {
		assert.Equal(t, "heart", SnowballStemmer{}.Stem("hearts"))
	})
}

func TestLookupSingleFlight(t *testing.T) {
	fetcher := &fetcherMock{
		responses: map[string]string{"heart": heartResponse},
		started:   make(chan struct{}, 10),
		release:   make(chan struct{}),
	}
	service := NewService(db.NewInMemoryStorage(), fetcher, nil)

	var wg sync.WaitGroup
	results := make([]Result, 5)
	lookup := func(i int) {
		defer wg.Done()
		res, err := service.Lookup(context.Background(), "heart")
		assert.NoError(t, err)
		results[i] = res
	}
	wg.Add(1)
	go lookup(0)
	<-fetcher.started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go lookup(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
	for _, res := range results {
		assert.Equal(t, "heart:1", res.Entries.ID())
	}
}

func TestStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cache := db.NewInMemoryStorage()
		service := NewService(cache, &fetcherMock{}, nil)
		res, err := service.Store("Heart", []byte(heartResponse))
		require.NoError(t, err)
		assert.Equal(t, "heart:1", res.Entries.ID())
		cached, err := cache.GetCached("heart")
		require.NoError(t, err)
		assert.Equal(t, []byte(heartResponse), cached)
	})
	t.Run("invalid", func(t *testing.T) {
		service := NewService(db.NewInMemoryStorage(), &fetcherMock{}, nil)
		_, err := service.Store("heart", []byte("NOT_JSON"))
		assert.ErrorIs(t, err, merriamwebster.ErrDecode)
		_, err = service.Store("heart", []byte(`["hearth"]`))
		assert.ErrorIs(t, err, ErrNoResult)
	})
}
