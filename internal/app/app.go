package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/simpleminer/internal/cache"
	"github.com/annel0/simpleminer/internal/config"
	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/metrics"
	"github.com/annel0/simpleminer/internal/physics"
	"github.com/annel0/simpleminer/internal/storage"
	"github.com/annel0/simpleminer/internal/vec"
	"github.com/annel0/simpleminer/internal/world"
	"github.com/annel0/simpleminer/internal/world/block"
	"github.com/annel0/simpleminer/internal/world/entity"
	"github.com/annel0/simpleminer/internal/world/gen"
)

// chunkPersistence - хранилище чанков с кешем или без
type chunkPersistence interface {
	world.ChunkSource
	world.ChunkSink
	Close() error
}

// App связывает мир, хранилища, метрики и симуляцию сущностей
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	Registry *block.Registry
	Metrics  *metrics.Exporter
	World    *world.WorldManager
	Entities *entity.EntityManager
	Player   *entity.Entity

	chunks      chunkPersistence
	entityStore *EntityStorage
	physicsCfg  physics.Config
	placeID     block.BlockID
}

// New собирает приложение по конфигурации. Недоступный Redis не является ошибкой.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		cfg:        cfg,
		logger:     logging.GetComponentLogger("app"),
		Entities:   entity.NewEntityManager(),
		Metrics:    metrics.NewExporter(nil),
		physicsCfg: cfg.Physics.ToPhysics(),
	}

	a.Registry = block.NewDefaultRegistry()
	if cfg.World.BlocksFile != "" {
		n, err := block.LoadYAML(a.Registry, cfg.World.BlocksFile)
		if err != nil {
			return nil, fmt.Errorf("load blocks: %w", err)
		}
		a.logger.Info("Загружено дополнительных блоков: %d", n)
	}

	placeID, ok := a.Registry.GetBlockId(block.Namespace, cfg.World.PlaceBlock)
	if !ok {
		return nil, fmt.Errorf("unknown place block %q", cfg.World.PlaceBlock)
	}
	a.placeID = placeID

	chunkStore, err := storage.NewChunkStore(storage.Options{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
	})
	if err != nil {
		return nil, err
	}
	a.chunks = chunkStore

	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:       cfg.Cache.Addr,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			DefaultTTL: cfg.Cache.TTL(),
		})
		if err != nil {
			a.logger.Warn("Redis недоступен, кеш чанков отключён: %v", err)
		} else {
			a.chunks = storage.NewCachedChunkStore(chunkStore, rc, cfg.Cache.TTL())
		}
	}

	a.entityStore, err = NewEntityStorage(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		a.chunks.Close()
		return nil, err
	}

	generator := gen.NewSimpleMinerGenerator(a.Registry, gen.WithObserver(a.Metrics))
	a.World = world.NewWorldManager(cfg.World.GetSeed(), a.Registry, generator,
		world.WithSource(a.chunks),
		world.WithSink(a.chunks),
		world.WithWorkers(cfg.World.Workers),
		world.WithAutoSaveInterval(cfg.World.AutoSaveInterval()),
		world.WithLoadObserver(a.Metrics),
	)

	a.logger.Info("Мир создан: сид %d, блоков в реестре %d", a.World.Seed(), a.Registry.Len())
	return a, nil
}

// SpawnPlayer восстанавливает сохранённого игрока или создаёт нового над поверхностью в (0,0)
func (a *App) SpawnPlayer(ctx context.Context) error {
	saved, err := a.entityStore.LoadAll()
	if err != nil {
		return err
	}

	for _, data := range saved {
		if entity.EntityType(data.Type) != entity.EntityTypePlayer {
			continue
		}
		player, err := data.Restore(a.physicsCfg, a.World)
		if err != nil {
			a.logger.Warn("Не удалось восстановить игрока %s: %v", data.ID, err)
			continue
		}
		if err := a.World.LoadArea(ctx, chunkOf(player.Body.Position), a.cfg.World.SpawnRadius); err != nil {
			return err
		}
		a.logger.Info("Игрок %s восстановлен в %v", player.ID, player.Body.Position)
		return a.spawn(player)
	}

	if err := a.World.LoadArea(ctx, vec.Vec2{}, a.cfg.World.SpawnRadius); err != nil {
		return err
	}
	z, ok := a.World.TopSolidZ(0, 0)
	if !ok {
		z = gen.SeaLevel
	}
	player := entity.NewPlayer(mgl64.Vec3{0.5, 0.5, float64(z + 1)}, a.physicsCfg, a.World)
	a.logger.Info("Новый игрок %s в %v", player.ID, player.Body.Position)
	return a.spawn(player)
}

func (a *App) spawn(player *entity.Entity) error {
	player.Body.SetObserver(a.Metrics)
	if player.Control != nil {
		player.Control.World = a.World
		player.Control.Selected = a.placeID
	}
	if err := a.Entities.Spawn(player); err != nil {
		return err
	}
	a.Player = player
	a.Metrics.SetEntityCount(a.Entities.Count())
	return nil
}

func chunkOf(p mgl64.Vec3) vec.Vec2 {
	return vec.FloorVec3(p).ChunkCoords()
}

// Наклон взгляда автопилота: смотрит под ноги впереди
const autopilotPitch = 45.0

// autopilotInput - сценарий ввода для безголового запуска: игрок идёт вперёд,
// плавно поворачивает, периодически прыгает, копает и ставит блоки
func autopilotInput(frame int) entity.MovementInput {
	return entity.MovementInput{
		Forward: true,
		Sprint:  frame%240 < 60,
		Jump:    frame%90 == 0,
		Dig:     frame%120 == 30,
		Place:   frame%120 == 90,
	}
}

// Tick продвигает симуляцию на один кадр. Возвращает число шагов физики.
func (a *App) Tick(ctx context.Context, frame int, dt float64) (int, error) {
	if a.Player != nil && a.Player.Control != nil {
		a.Player.Control.SetInput(autopilotInput(frame))
		a.Player.Control.YawDegrees = math.Mod(float64(frame)*0.25, 360)
		a.Player.Control.PitchDegrees = autopilotPitch
	}

	before := vec.Vec2{}
	if a.Player != nil {
		before = chunkOf(a.Player.Body.Position)
	}

	steps := a.Entities.Update(dt)

	if a.Player != nil {
		if now := chunkOf(a.Player.Body.Position); now != before {
			if err := a.World.LoadArea(ctx, now, a.cfg.World.SpawnRadius); err != nil {
				return steps, err
			}
		}
	}
	return steps, nil
}

// Run запускает автосохранение, /metrics и симуляцию до отмены контекста
// или исчерпания world.simulation_frames (0 - без ограничения)
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.World.Run(ctx)

	if a.cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", a.cfg.Metrics.GetMetricsPort())
		go func() {
			if err := a.Metrics.Serve(ctx, addr); err != nil {
				a.logger.Error("Ошибка Prometheus HTTP сервера: %v", err)
			}
		}()
	}

	if a.Player == nil {
		if err := a.SpawnPlayer(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(time.Duration(physics.FixedTimestep * float64(time.Second)))
	defer ticker.Stop()

	limit := a.cfg.World.SimulationFrames
	for frame := 0; limit <= 0 || frame < limit; frame++ {
		select {
		case <-ctx.Done():
			a.logger.Info("Симуляция остановлена на кадре %d", frame)
			return nil
		case <-ticker.C:
		}
		if _, err := a.Tick(ctx, frame, physics.FixedTimestep); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}

	a.logger.Info("Симуляция завершена: %d кадров, игрок в %v", limit, a.Player.Body.Position)
	return nil
}

// Close сохраняет сущности и мир, затем закрывает хранилища
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.entityStore.SaveEntities(a.Entities.All()); err != nil {
		errs = append(errs, fmt.Errorf("save entities: %w", err))
	}
	if err := a.World.SaveWorld(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save world: %w", err))
	}
	if err := a.entityStore.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.chunks.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
