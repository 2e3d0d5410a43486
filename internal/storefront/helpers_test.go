package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/storage/memory"
)

var errBackendDown = errors.New("backend down")

// flakyKV оборачивает in-memory хранилище и позволяет ронять операции и считать записи.
type flakyKV struct {
	inner domain.KVStore

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{inner: memory.NewKVStore()}
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", false, errBackendDown
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return errBackendDown
	}
	return f.inner.Set(ctx, key, value)
}

func (f *flakyKV) Remove(ctx context.Context, key string) error {
	return f.inner.Remove(ctx, key)
}

func (f *flakyKV) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

type recordingPublisher struct {
	orders []domain.Order
	err    error
}

func (p *recordingPublisher) PublishOrderCommitted(_ context.Context, order domain.Order) error {
	p.orders = append(p.orders, order)
	return p.err
}

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "test")
}

type fixture struct {
	sessionKV *flakyKV
	durableKV *flakyKV
	store     *SessionCartStore
	records   *DurableRecordStore
	session   *CartSession
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{sessionKV: newFlakyKV(), durableKV: newFlakyKV()}
	f.store = NewSessionCartStore(f.sessionKV, testLogger(), nil)
	f.records = NewDurableRecordStore(f.durableKV, testLogger(), nil)
	opts = append([]Option{WithClock(fixedClock), WithLogger(testLogger())}, opts...)
	f.session = NewCartSession(f.store, f.records, opts...)
	return f
}
