package gridding

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_result_cache_hits_total",
		Help: "The total number of hits on the result cache",
	})
	resultCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_result_cache_misses_total",
		Help: "The total number of misses on the result cache",
	})
	resultCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridding_result_cache_evictions_total",
		Help: "The total number of evictions from the result cache",
	})
)

// A resultKey identifies a cached result.
type resultKey struct {
	name       string
	seriesKey  string
	parameters Parameters
}

// A Service grids named data sets, caching the results.
type Service struct {
	mutex         sync.Mutex
	engine        *Engine
	engineOptions []EngineOption
	cacheSize     int
	resultCache   *lru.Cache[resultKey, *Result]
}

// A ServiceOption sets an option on a Service.
type ServiceOption func(*Service)

// NewService returns a new Service with the given options.
func NewService(options ...ServiceOption) (*Service, error) {
	s := &Service{
		cacheSize: 16,
	}
	for _, option := range options {
		option(s)
	}
	if s.engine == nil {
		s.engine = NewEngine(s.engineOptions...)
	}

	var err error
	s.resultCache, err = lru.New[resultKey, *Result](s.cacheSize)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func WithEngine(engine *Engine) ServiceOption {
	return func(s *Service) {
		s.engine = engine
	}
}

func WithEngineOptions(engineOptions ...EngineOption) ServiceOption {
	return func(s *Service) {
		s.engineOptions = engineOptions
	}
}

func WithResultCacheSize(cacheSize int) ServiceOption {
	return func(s *Service) {
		s.cacheSize = cacheSize
	}
}

// Grid returns the result of gridding seriesKey from sources, which together
// form the data set name, using a cached result if possible. Runs without a
// result are not cached.
func (s *Service) Grid(ctx context.Context, name string, sources []Source, seriesKey string, params Parameters) (*Result, error) {
	key := resultKey{
		name:       name,
		seriesKey:  seriesKey,
		parameters: params,
	}
	if result, ok := s.resultCache.Get(key); ok {
		resultCacheHits.Inc()
		return result, nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if result, ok := s.resultCache.Get(key); ok {
		resultCacheHits.Inc()
		return result, nil
	}

	resultCacheMisses.Inc()

	result, err := s.engine.Run(ctx, sources, seriesKey, params)
	if err != nil || result == nil {
		return nil, err
	}
	if eviction := s.resultCache.Add(key, result); eviction {
		resultCacheEvictions.Inc()
	}
	return result, nil
}

// Invalidate removes every cached result of the data set name. It waits for
// any Grid call in progress.
func (s *Service) Invalidate(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range s.resultCache.Keys() {
		if key.name == name {
			s.resultCache.Remove(key)
		}
	}
}

// Len returns the number of cached results.
func (s *Service) Len() int {
	return s.resultCache.Len()
}
