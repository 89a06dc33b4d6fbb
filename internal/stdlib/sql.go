package stdlib

import (
	"database/sql"
	"errors"
	"fmt"
	"iron/internal/log"
	"iron/internal/object"
	"iron/internal/runtime"
	"slices"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLOptions restricts which drivers scripts may open and sizes each pool.
type SQLOptions struct {
	Drivers      []string
	MaxOpenConns int
	MaxIdleConns int
}

func DefaultSQLOptions() SQLOptions {
	return SQLOptions{
		Drivers:      []string{"sqlite3", "mysql", "postgres"},
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}
}

var (
	errClosed        = errors.New("database is closed")
	errNoTransaction = errors.New("no transaction in progress")
)

// DB is a script-held connection pool. Copies of a DB share the pool and the
// transaction in progress.
type DB struct {
	driver string
	state  *dbState
}

type dbState struct {
	conn *sql.DB
	tx   *sql.Tx
}

func (db DB) String() string {
	if db.state == nil || db.state.conn == nil {
		return "<db " + db.driver + " closed>"
	}
	return "<db " + db.driver + ">"
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

func (db DB) target() (execer, error) {
	if db.state == nil || db.state.conn == nil {
		return nil, errClosed
	}
	if db.state.tx != nil {
		return db.state.tx, nil
	}
	return db.state.conn, nil
}

// Rows is a fully read result set.
type Rows struct {
	Columns []string
	Items   []object.Array
}

func (r Rows) String() string {
	return fmt.Sprintf("<rows %d>", len(r.Items))
}

func (r Rows) CloneValue() any {
	items := make([]object.Array, len(r.Items))
	for i, row := range r.Items {
		items[i] = row.CloneValue().(object.Array)
	}
	return Rows{Columns: slices.Clone(r.Columns), Items: items}
}

type RowsIter struct {
	rows []object.Array
}

func (it RowsIter) CloneValue() any {
	return RowsIter{rows: slices.Clone(it.rows)}
}

// SQLModule is std::sql.
func SQLModule[T any](opts SQLOptions) *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("open", func(driver, dsn string) (DB, error) {
			return openDB(opts, driver, dsn)
		}).
		MustRegister("exec", func(db DB, query string) (int32, error) {
			return execQuery(db, query, object.NewArray())
		}).
		MustRegister("exec", execQuery).
		MustRegister("query", func(db DB, query string) (Rows, error) {
			return runQuery(db, query, object.NewArray())
		}).
		MustRegister("query", runQuery).
		MustRegister("begin", begin).
		MustRegister("commit", func(db DB) error {
			return finish(db, (*sql.Tx).Commit)
		}).
		MustRegister("rollback", func(db DB) error {
			return finish(db, (*sql.Tx).Rollback)
		}).
		MustRegister("close", closeDB)
}

// RowsModule drives for-loops over query results. It lives in the root
// namespace since the loop protocol is resolved there.
func RowsModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("into_iter", func(r Rows) RowsIter {
			return RowsIter{rows: r.Items}
		}).
		MustRegister("iter_next", func(it *RowsIter) object.Option {
			if len(it.rows) == 0 {
				return object.None()
			}
			row := it.rows[0]
			it.rows = it.rows[1:]
			return object.Some(object.New(row.CloneValue()))
		}).
		MustRegister("len", func(r Rows) int32 {
			return int32(len(r.Items))
		}).
		MustRegister("columns", func(r Rows) object.Array {
			arr := object.NewArray()
			for _, c := range r.Columns {
				arr.Push(object.String(c))
			}
			return arr
		})
}

func openDB(opts SQLOptions, driver, dsn string) (DB, error) {
	if !slices.Contains(opts.Drivers, driver) {
		return DB{}, fmt.Errorf("driver %q is not allowed (allowed: %s)", driver, strings.Join(opts.Drivers, ", "))
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return DB{}, fmt.Errorf("failed to open connection: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return DB{}, fmt.Errorf("failed to ping database: %w", err)
	}
	log.L().Debug("sql open", zap.String("driver", driver))
	return DB{driver: driver, state: &dbState{conn: conn}}, nil
}

func execQuery(db DB, query string, params object.Array) (int32, error) {
	target, err := db.target()
	if err != nil {
		return 0, err
	}
	res, err := target.Exec(query, queryArgs(params)...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int32(affected), nil
}

func runQuery(db DB, query string, params object.Array) (Rows, error) {
	target, err := db.target()
	if err != nil {
		return Rows{}, err
	}
	rows, err := target.Query(query, queryArgs(params)...)
	if err != nil {
		return Rows{}, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return readRows(rows)
}

func begin(db DB) error {
	if db.state == nil || db.state.conn == nil {
		return errClosed
	}
	if db.state.tx != nil {
		return errors.New("transaction already in progress")
	}
	tx, err := db.state.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	db.state.tx = tx
	return nil
}

func finish(db DB, end func(*sql.Tx) error) error {
	if db.state == nil || db.state.tx == nil {
		return errNoTransaction
	}
	tx := db.state.tx
	db.state.tx = nil
	return end(tx)
}

func closeDB(db DB) error {
	if db.state == nil || db.state.conn == nil {
		return nil
	}
	if db.state.tx != nil {
		_ = db.state.tx.Rollback()
		db.state.tx = nil
	}
	err := db.state.conn.Close()
	db.state.conn = nil
	log.L().Debug("sql close", zap.String("driver", db.driver))
	return err
}

func queryArgs(params object.Array) []any {
	args := make([]any, 0, params.Len())
	for _, cell := range params.Items {
		u := cell.Cloned()
		switch u.Kind() {
		case object.KindUnit:
			args = append(args, nil)
		case object.KindInt:
			v, _ := u.AsInt()
			args = append(args, int64(v))
		case object.KindFloat:
			v, _ := u.AsFloat()
			args = append(args, float64(v))
		case object.KindBool:
			v, _ := u.AsBool()
			args = append(args, v)
		default:
			args = append(args, u.Inspect())
		}
	}
	return args
}

func readRows(rows *sql.Rows) (Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Rows{}, err
	}
	types, _ := rows.ColumnTypes()

	result := Rows{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return Rows{}, err
		}

		row := object.NewArray()
		for i := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			row.Push(mapValue(values[i], typeName))
		}
		result.Items = append(result.Items, row)
	}
	return result, rows.Err()
}

func mapValue(v any, dbType string) object.Union {
	if v == nil {
		return object.Unit()
	}
	switch x := v.(type) {
	case int64:
		if strings.EqualFold(dbType, "BOOLEAN") || strings.EqualFold(dbType, "BOOL") {
			return object.Bool(x != 0)
		}
		return object.Int(int32(x))
	case float64:
		return object.Float(float32(x))
	case float32:
		return object.Float(x)
	case []byte:
		return object.String(string(x))
	case string:
		return object.String(x)
	case bool:
		return object.Bool(x)
	case time.Time:
		return object.String(x.Format(time.RFC3339))
	default:
		return object.String(fmt.Sprintf("%v", v))
	}
}
