package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dicri/evidence-api/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 5 * time.Second

// Connect crea el pool de conexiones. El pool conecta de forma perezosa,
// así que un servidor caído no hace fallar esta llamada; para eso está Ping.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error al parsear la URL de la base de datos: %w", err)
	}
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	if cfg.DBConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout
	}
	// Protocolo simple: los parámetros NULL de los procedimientos se envían sin tipo
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("error al crear el pool de conexiones: %w", err)
	}
	return pool, nil
}

// Ping prueba la conexión y retorna la versión del motor
func Ping(ctx context.Context, pool *pgxpool.Pool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("error al probar la conexión: %w", err)
	}
	return version, nil
}
