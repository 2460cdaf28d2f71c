package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/simpleminer/internal/logging"
	"github.com/annel0/simpleminer/internal/physics"
)

// ErrInvalidConfig - значение конфигурации вне допустимого диапазона
var ErrInvalidConfig = errors.New("invalid config")

// Config корневая структура конфигурации приложения
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Physics PhysicsConfig `yaml:"physics"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

type WorldConfig struct {
	Seed             uint32 `yaml:"seed"`
	SpawnRadius      int    `yaml:"spawn_radius"`
	Workers          int    `yaml:"workers"`
	BlocksFile       string `yaml:"blocks_file"` // Дополнительные блоки (YAML)
	PlaceBlock       string `yaml:"place_block"` // Блок, который ставит игрок (simpleminer:<имя>)
	AutoSaveSeconds  int    `yaml:"autosave_seconds"`
	SimulationFrames int    `yaml:"simulation_frames"`
}

// PhysicsConfig - настройки физики сущностей
type PhysicsConfig struct {
	Gravity              float64 `yaml:"gravity"`
	GroundedDrag         float64 `yaml:"grounded_drag"`
	AirborneDrag         float64 `yaml:"airborne_drag"`
	GroundedAcceleration float64 `yaml:"grounded_acceleration"`
	AirborneAcceleration float64 `yaml:"airborne_acceleration"`
	SpeedLimit           float64 `yaml:"speed_limit"`
	JumpImpulse          float64 `yaml:"jump_impulse"`
}

type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	p := physics.DefaultConfig()
	return &Config{
		World: WorldConfig{
			SpawnRadius:      2,
			Workers:          4,
			PlaceBlock:       "stone",
			AutoSaveSeconds:  300,
			SimulationFrames: 600,
		},
		Physics: PhysicsConfig{
			Gravity:              p.Gravity,
			GroundedDrag:         p.GroundedDrag,
			AirborneDrag:         p.AirborneDrag,
			GroundedAcceleration: p.GroundedAcceleration,
			AirborneAcceleration: p.AirborneAcceleration,
			SpeedLimit:           p.SpeedLimit,
			JumpImpulse:          p.JumpImpulse,
		},
		Storage: StorageConfig{Path: "data/chunks"},
		Cache: CacheConfig{
			Addr:       "localhost:6379",
			TTLSeconds: 600,
		},
		Metrics: MetricsConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// GetSeed возвращает сид мира: config -> env SIMPLEMINER_SEED -> 0
func (w *WorldConfig) GetSeed() uint32 {
	if w.Seed != 0 {
		return w.Seed
	}
	if envVal := os.Getenv("SIMPLEMINER_SEED"); envVal != "" {
		if seed, err := strconv.ParseUint(envVal, 10, 32); err == nil {
			return uint32(seed)
		}
	}
	return 0
}

// AutoSaveInterval возвращает период автосохранения
func (w *WorldConfig) AutoSaveInterval() time.Duration {
	return time.Duration(w.AutoSaveSeconds) * time.Second
}

// TTL возвращает время жизни чанка в кэше
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "SIMPLEMINER_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

type bound struct {
	name     string
	value    float64
	min, max float64
	minOpen  bool // (min, max] вместо [min, max]
}

func (b bound) check() error {
	low := b.value < b.min
	if b.minOpen {
		low = b.value <= b.min
	}
	if low || b.value > b.max {
		open := "["
		if b.minOpen {
			open = "("
		}
		return fmt.Errorf("%w: physics.%s = %v, expected %s%v, %v]", ErrInvalidConfig, b.name, b.value, open, b.min, b.max)
	}
	return nil
}

// Validate проверяет диапазоны физических констант
func (p *PhysicsConfig) Validate() error {
	bounds := []bound{
		{"gravity", p.Gravity, 0, 50, true},
		{"grounded_drag", p.GroundedDrag, 0, 20, false},
		{"airborne_drag", p.AirborneDrag, 0, 10, false},
		{"grounded_acceleration", p.GroundedAcceleration, 0, 50, true},
		{"airborne_acceleration", p.AirborneAcceleration, 0, 20, true},
		{"speed_limit", p.SpeedLimit, 0, 100, true},
		{"jump_impulse", p.JumpImpulse, 0, 20, true},
	}

	var errs []error
	for _, b := range bounds {
		if err := b.check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ToPhysics переводит секцию в настройки физического движка
func (p *PhysicsConfig) ToPhysics() physics.Config {
	return physics.Config{
		Gravity:              p.Gravity,
		GroundedDrag:         p.GroundedDrag,
		AirborneDrag:         p.AirborneDrag,
		GroundedAcceleration: p.GroundedAcceleration,
		AirborneAcceleration: p.AirborneAcceleration,
		SpeedLimit:           p.SpeedLimit,
		JumpImpulse:          p.JumpImpulse,
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает Default().
// Недопустимые физические константы заменяются значениями по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Physics.Validate(); err != nil {
		logging.Warn("Некорректные настройки физики, используются значения по умолчанию: %v", err)
		cfg.Physics = Default().Physics
	}

	return cfg, nil
}
