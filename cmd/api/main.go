package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/session"
	"app/internal/server"
	"app/internal/sweeper"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	// .envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("failed to connect db", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	//セッションストア（Redis）
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sessions := session.NewRedisSessionStore(redisClient, cfg.SessionTTL)

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	clock := &realClock{}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartItemRepo, productRepo, clock, logger)
	sweepUC := usecase.NewSweeperUsecase(cartRepo, clock, logger, cfg.AbandonAfter, cfg.RemoveAfter)

	//Handler生成
	cartH := handler.NewCartHandler(cartUC, sessions)

	//シグナルで全体を止める
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//スイーパー起動
	runner := sweeper.NewRunner(sweepUC, cfg.SweepInterval, logger)
	go runner.Run(ctx)

	//Server起動
	e := server.New(cartH)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
