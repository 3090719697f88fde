package weather

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WarmupResult reports which cities were prefetched.
type WarmupResult struct {
	Warmed []string
	Failed map[string]error
}

// Warmer prefetches city nowcasts into the service cache with a fixed pool
// of workers.
type Warmer struct {
	service *Service
	workers int
	logger  *zap.Logger

	taskQueue chan string
	workerWg  sync.WaitGroup

	mu     sync.Mutex
	result WarmupResult
}

func NewWarmer(service *Service, workers int) *Warmer {
	if workers <= 0 {
		workers = 1
	}
	return &Warmer{
		service: service,
		workers: workers,
		logger:  service.logger.Named("warmer"),
	}
}

// Run fetches every city once and blocks until all workers are done or ctx
// is cancelled. An empty list warms all supported cities.
func (w *Warmer) Run(ctx context.Context, cities []string) WarmupResult {
	if len(cities) == 0 {
		cities = w.service.SupportedCities()
	}

	w.result = WarmupResult{Failed: make(map[string]error)}
	w.taskQueue = make(chan string, len(cities))
	for _, city := range cities {
		w.taskQueue <- city
	}
	close(w.taskQueue)

	for i := 0; i < w.workers; i++ {
		w.workerWg.Add(1)
		go newWarmupWorker(w, i).start(ctx)
	}
	w.workerWg.Wait()

	w.logger.Info("Cache warmup finished",
		zap.Int("warmed", len(w.result.Warmed)),
		zap.Int("failed", len(w.result.Failed)))

	return w.result
}

func (w *Warmer) record(city string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.result.Failed[city] = err
		return
	}
	w.result.Warmed = append(w.result.Warmed, city)
}

type warmupWorker struct {
	warmer   *Warmer
	workerID int
	logger   *zap.Logger
}

func newWarmupWorker(w *Warmer, workerID int) *warmupWorker {
	return &warmupWorker{
		warmer:   w,
		workerID: workerID,
		logger:   w.logger.With(zap.Int("worker_id", workerID)),
	}
}

func (w *warmupWorker) start(ctx context.Context) {
	defer w.warmer.workerWg.Done()

	w.logger.Debug("Worker started")

	for {
		select {
		case city, ok := <-w.warmer.taskQueue:
			if !ok {
				w.logger.Debug("Task queue drained, worker stopping")
				return
			}
			w.process(ctx, city)
		case <-ctx.Done():
			w.logger.Info("Context cancelled, worker stopping")
			return
		}
	}
}

func (w *warmupWorker) process(ctx context.Context, city string) {
	tracer := w.warmer.service.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.warmupCity")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", city),
		attribute.Int("worker_id", w.workerID),
	)

	_, err := w.warmer.service.CityWeather(ctx, city)
	if err != nil {
		w.logger.Warn("Warmup failed", zap.String("city", city), zap.Error(err))
	} else {
		w.logger.Debug("City warmed", zap.String("city", city))
	}
	w.warmer.record(city, err)
}
