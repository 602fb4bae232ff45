// Package database contiene el pool de conexiones y la invocación de los
// procedimientos almacenados del esquema dicri.
package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dicri/evidence-api/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RaiseExceptionCode es el SQLSTATE de RAISE EXCEPTION sin código explícito:
// los errores de negocio que lanzan los procedimientos.
const RaiseExceptionCode = "P0001"

var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ErrInvalidProcedure se retorna cuando el nombre del procedimiento no es un identificador válido
var ErrInvalidProcedure = errors.New("nombre de procedimiento inválido")

// Querier lo satisfacen *pgxpool.Pool, *pgx.Conn y pgx.Tx
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Observer recibe la duración y el resultado de cada llamada
type Observer interface {
	ObserveProcedure(procedure, outcome string, elapsed time.Duration)
}

// Caller es la abstracción que usan los repositorios
type Caller interface {
	Call(ctx context.Context, name string, args ...any) ([]Row, error)
	Exec(ctx context.Context, name string, args ...any) error
}

// ProcedureError envuelve cualquier fallo al invocar un procedimiento
type ProcedureError struct {
	Procedure string
	Code      string
	Message   string
	Err       error
}

func (e *ProcedureError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Procedure, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

func (e *ProcedureError) Unwrap() error { return e.Err }

// Raised indica que el error lo lanzó el propio procedimiento (regla de negocio)
func (e *ProcedureError) Raised() bool { return e.Code == RaiseExceptionCode }

// Procedures invoca procedimientos almacenados sobre un Querier
type Procedures struct {
	db       Querier
	observer Observer
	log      *zap.Logger
}

// NewProcedures crea el invocador. observer y log pueden ser nil.
func NewProcedures(db Querier, observer Observer, log *zap.Logger) *Procedures {
	if log == nil {
		log = zap.NewNop()
	}
	return &Procedures{db: db, observer: observer, log: log.Named("procedures")}
}

// Call ejecuta una función que retorna un conjunto de filas
func (p *Procedures) Call(ctx context.Context, name string, args ...any) ([]Row, error) {
	stmt, err := SelectStatement(name, len(args))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := p.db.Query(ctx, stmt, args...)
	var records []map[string]any
	if err == nil {
		records, err = pgx.CollectRows(rows, pgx.RowToMap)
	}
	p.observe(name, err, time.Since(start))
	if err != nil {
		return nil, wrapError(name, err)
	}

	p.log.Debug("procedimiento ejecutado",
		zap.String("procedure", name),
		zap.Int("rows", len(records)),
		zap.Duration("elapsed", time.Since(start)))

	out := make([]Row, len(records))
	for i, r := range records {
		out[i] = Row(r)
	}
	return out, nil
}

// Exec ejecuta un PROCEDURE que no retorna filas
func (p *Procedures) Exec(ctx context.Context, name string, args ...any) error {
	stmt, err := CallStatement(name, len(args))
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = p.db.Exec(ctx, stmt, args...)
	p.observe(name, err, time.Since(start))
	if err != nil {
		return wrapError(name, err)
	}
	return nil
}

func (p *Procedures) observe(name string, err error, elapsed time.Duration) {
	if p.observer == nil {
		return
	}
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailed
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == RaiseExceptionCode {
			outcome = metrics.OutcomeRaised
		}
	}
	p.observer.ObserveProcedure(name, outcome, elapsed)
}

// SelectStatement arma "SELECT * FROM nombre($1, ..., $n)"
func SelectStatement(name string, argc int) (string, error) {
	return statement("SELECT * FROM ", name, argc)
}

// CallStatement arma "CALL nombre($1, ..., $n)"
func CallStatement(name string, argc int) (string, error) {
	return statement("CALL ", name, argc)
}

func statement(prefix, name string, argc int) (string, error) {
	if !procedureName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProcedure, name)
	}
	placeholders := make([]string, argc)
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return prefix + name + "(" + strings.Join(placeholders, ", ") + ")", nil
}

func wrapError(name string, err error) error {
	pe := &ProcedureError{Procedure: name, Message: err.Error(), Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		pe.Code = pgErr.Code
		pe.Message = pgErr.Message
	}
	return pe
}
