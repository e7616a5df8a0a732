// Package main - точка входа движка подбора напарников PlayPal Community Hub.
//
// Matcher выполняет один запуск подбора для пары (пользователь, спорт):
// - preview: находит совместимых игроков без записи в хранилище
// - generate: находит, ранжирует и сохраняет подборы
// - view/like: фиксирует реакцию пользователя на конкретный подбор
//
// Философия: "Спорт интереснее вместе" - движок ищет напарника
// подходящего уровня, а не самого сильного игрока.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/playpal-hub/playpal-community-hub/config"
	"github.com/playpal-hub/playpal-community-hub/internal/application/command"
	"github.com/playpal-hub/playpal-community-hub/internal/application/query"
	"github.com/playpal-hub/playpal-community-hub/internal/domain/matchmaking"
	"github.com/playpal-hub/playpal-community-hub/internal/infrastructure/persistence/postgres"
	"github.com/playpal-hub/playpal-community-hub/internal/infrastructure/persistence/redis"
	"github.com/playpal-hub/playpal-community-hub/pkg/logger"
)

func main() {
	// .env удобен в разработке; в production переменные приходят из окружения
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ФЛАГИ И КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	var (
		userID  = flag.Int64("user", 0, "ID пользователя, для которого выполняется подбор")
		sport   = flag.String("sport", "", "вид спорта (football, tennis, ...)")
		preview = flag.Bool("preview", false, "только предпросмотр, без записи подборов")
		view    = flag.String("view", "", "ID подбора, который нужно отметить просмотренным")
		like    = flag.String("like", "", "ID подбора, который нужно лайкнуть")
	)
	flag.Parse()

	feedback := *view != "" || *like != ""
	if *userID <= 0 || (*sport == "" && !feedback) {
		flag.Usage()
		return fmt.Errorf("both -user and -sport are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	appLog := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	}).With(logger.Component("matcher"))

	appLog.Info("starting PlayPal matcher",
		logger.String("env", string(cfg.App.Environment)),
		logger.UserID(*userID),
		logger.Sport(*sport),
		logger.Bool("preview", *preview),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	appLog.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (опционально, только для кеша предпросмотра)
	// ─────────────────────────────────────────────────────────────────────────
	var previewCache matchmaking.PreviewCache
	if !cfg.Redis.Disabled &&
		cfg.Features.IsEnabled(config.FeatureMatchPreviewCache, &config.FeatureContext{UserID: *userID}) {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			// Кеш не критичен: без него предпросмотр просто считается заново
			appLog.Warn("failed to connect to Redis, preview cache disabled", logger.Err(err))
		} else {
			defer cache.Close()
			previewCache = redis.NewPreviewCache(cache)
			appLog.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. РЕПОЗИТОРИИ И ОБРАБОТЧИКИ
	// ─────────────────────────────────────────────────────────────────────────
	prefRepo := postgres.NewPreferenceRepository(dbConn)
	matchRepo := postgres.NewMatchRepository(dbConn)

	runCtx, cancel := context.WithTimeout(ctx, cfg.Matchmaking.GenerationTimeout)
	defer cancel()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ЗАПУСК ПОДБОРА
	// ─────────────────────────────────────────────────────────────────────────
	start := time.Now()

	if feedback {
		handler := command.NewMatchFeedbackHandler(matchRepo, previewCache, log)
		if *view != "" {
			err := handler.HandleMarkViewed(runCtx, command.MarkMatchViewedCommand{
				MatchID: *view,
				UserID:  *userID,
			})
			if err != nil {
				return fmt.Errorf("mark viewed failed: %w", err)
			}
			appLog.Info("match marked as viewed",
				logger.String("match_id", *view),
				logger.Latency(time.Since(start)),
			)
			return nil
		}

		result, err := handler.HandleLike(runCtx, command.LikeMatchCommand{
			MatchID: *like,
			UserID:  *userID,
		})
		if err != nil {
			return fmt.Errorf("like failed: %w", err)
		}
		appLog.Info("match liked",
			logger.String("match_id", result.MatchID),
			logger.Bool("mutual", result.IsMutual),
			logger.Latency(time.Since(start)),
		)
		return printJSON(result)
	}

	if *preview {
		handler := query.NewFindCompatiblePlayersHandler(prefRepo, prefRepo, previewCache, log)
		result, err := handler.Handle(runCtx, query.FindCompatiblePlayersQuery{
			RequesterID: *userID,
			Sport:       *sport,
		})
		if err != nil {
			return fmt.Errorf("preview failed: %w", err)
		}

		appLog.Info("preview completed",
			logger.Int("players", len(result.Players)),
			logger.Bool("from_cache", result.FromCache),
			logger.Latency(time.Since(start)),
		)
		return printJSON(result)
	}

	handler := command.NewGenerateMatchesHandler(prefRepo, prefRepo, matchRepo, log)
	result, err := handler.Handle(runCtx, command.GenerateMatchesCommand{
		UserID: *userID,
		Sport:  *sport,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	appLog.Info("generation completed",
		logger.Int("matches", len(result.Matches)),
		logger.Int("created", result.CreatedCount),
		logger.Int("skipped_existing", result.SkippedExisting),
		logger.Latency(time.Since(start)),
	)
	return printJSON(result)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование для обработчиков.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// printJSON печатает результат подбора в stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
