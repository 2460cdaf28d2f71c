package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/simpleminer/internal/app"
	"github.com/annel0/simpleminer/internal/config"
	"github.com/annel0/simpleminer/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run возвращает код выхода; отложенные вызовы закрывают логи до os.Exit
func run(args []string) int {
	fs := flag.NewFlagSet("simpleminer", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML config (falls back to $GAME_CONFIG)")
		frames     = fs.Int("frames", -1, "Simulation frames, 0 = until signal (overrides config)")
		seed       = fs.Uint("seed", 0, "World seed (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Ошибка загрузки конфигурации: %v", err)
		return 1
	}
	if *frames >= 0 {
		cfg.World.SimulationFrames = *frames
	}
	if *seed != 0 {
		cfg.World.Seed = uint32(*seed)
	}

	// Инициализируем систему логирования
	if cfg.Logging.Dir != "" {
		logging.SetLogDir(cfg.Logging.Dir)
	}
	if err := logging.InitDefaultLogger("simpleminer"); err != nil {
		log.Printf("❌ Ошибка инициализации логирования: %v", err)
		return 1
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if level, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		logging.Warn("Неизвестный уровень логирования %q, используется INFO", cfg.Logging.Level)
	} else {
		logging.SetDefaultLevel(level)
	}

	logging.Info("🎮 Запуск SimpleMiner...")

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logging.Error("❌ Ошибка создания мира: %v", err)
		return 1
	}

	exitCode := 0
	if err := application.SpawnPlayer(ctx); err != nil {
		logging.Error("❌ Ошибка загрузки области спавна: %v", err)
		exitCode = 1
	} else if err := application.Run(ctx); err != nil {
		logging.Error("❌ Ошибка симуляции: %v", err)
		exitCode = 1
	}

	// === GRACEFUL SHUTDOWN ===
	logging.Debug("Сохранение мира...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Close(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка сохранения мира: %v", err)
		exitCode = 1
	}

	logging.Info("👋 SimpleMiner остановлен")
	return exitCode
}
