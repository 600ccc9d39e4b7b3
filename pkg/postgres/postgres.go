package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/config"
)

const (
	applicationName   = "crisis_connect"
	pingTimeout       = 5 * time.Second
	healthCheckPeriod = 30 * time.Second
)

// NewPostgresDB создает пул соединений PostgreSQL и проверяет его
func NewPostgresDB(ctx context.Context, appCfg *config.Config) (*pgxpool.Pool, error) {
	cfgPool, err := parsePoolConfig(appCfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, cfgPool)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	// Проверяем соединение с базой данных
	if err := dbpool.Ping(pingCtx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к postgres: %w", err)
	}

	return dbpool, nil
}

func parsePoolConfig(url string) (*pgxpool.Config, error) {
	cfgPool, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе конфигурации postgres: %w", err)
	}
	if _, ok := cfgPool.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfgPool.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	cfgPool.HealthCheckPeriod = healthCheckPeriod
	return cfgPool, nil
}
