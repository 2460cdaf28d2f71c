package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/simpleminer/internal/logging"
)

const namespace = "simpleminer"

// Exporter инкапсулирует Prometheus-метрики генерации мира и физики.
// Реализует gen.Observer, world.LoadObserver и physics.Observer.
type Exporter struct {
	registry *prometheus.Registry

	chunksGenerated   prometheus.Counter
	generationSeconds prometheus.Histogram
	chunksLoaded      *prometheus.CounterVec
	physicsSteps      prometheus.Counter
	collisions        *prometheus.CounterVec
	entities          prometheus.Gauge
}

// NewExporter создаёт метрики и регистрирует их в registry.
// При registry == nil создаётся отдельный регистр с метриками процесса и рантайма Go.
func NewExporter(registry *prometheus.Registry) *Exporter {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}

	e := &Exporter{
		registry: registry,
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Общее число сгенерированных чанков.",
		}),
		generationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_generation_seconds",
			Help:      "Время генерации одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		chunksLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_loaded_total",
			Help:      "Загруженные чанки по источнику (storage, generator).",
		}, []string{"source"}),
		physicsSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_steps_total",
			Help:      "Общее число шагов физики тел.",
		}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Столкновения, обнулившие смещение по оси.",
		}, []string{"axis"}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Число активных сущностей.",
		}),
	}

	registry.MustRegister(
		e.chunksGenerated,
		e.generationSeconds,
		e.chunksLoaded,
		e.physicsSteps,
		e.collisions,
		e.entities,
	)
	return e
}

// Registry возвращает регистр с метриками
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// ObserveChunkGenerated учитывает сгенерированный чанк
func (e *Exporter) ObserveChunkGenerated(d time.Duration) {
	e.chunksGenerated.Inc()
	e.generationSeconds.Observe(d.Seconds())
}

// ObserveChunkLoaded учитывает загрузку чанка из источника
func (e *Exporter) ObserveChunkLoaded(source string) {
	e.chunksLoaded.WithLabelValues(source).Inc()
}

// ObserveStep учитывает шаг физики
func (e *Exporter) ObserveStep() { e.physicsSteps.Inc() }

// ObserveCollision учитывает столкновение по оси
func (e *Exporter) ObserveCollision(axis string) {
	e.collisions.WithLabelValues(axis).Inc()
}

// SetEntityCount обновляет число сущностей
func (e *Exporter) SetEntityCount(n int) { e.entities.Set(float64(n)) }

// Handler возвращает HTTP-обработчик /metrics
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve обслуживает /metrics на addr до отмены контекста
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
