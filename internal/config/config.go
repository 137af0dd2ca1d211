package config

import (
	"fmt"
	"os"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	RedisAddr string // セッションストア用Redis（localhost:6379）

	AbandonAfter  time.Duration // これを超えて触られていないACTIVEカートはABANDONEDへ
	RemoveAfter   time.Duration // ABANDONEDのままこれを超えたら削除対象
	SweepInterval time.Duration // スイープの実行間隔
	SessionTTL    time.Duration // セッション結びつけの保持期間

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	abandonAfter, err := durationEnv("CART_ABANDON_AFTER", 3*time.Hour)
	if err != nil {
		return Config{}, err
	}
	removeAfter, err := durationEnv("CART_REMOVE_AFTER", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	sweepInterval, err := durationEnv("CART_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := durationEnv("CART_SESSION_TTL", 14*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		AbandonAfter:  abandonAfter,
		RemoveAfter:   removeAfter,
		SweepInterval: sweepInterval,
		SessionTTL:    sessionTTL,

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
