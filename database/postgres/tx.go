package postgres

import (
	"database/sql"
	"fmt"
	"sync"
)

// tableTx copies rows into one table. Each table has its own transaction
// and goroutine, so that all tables are filled concurrently.
type tableTx struct {
	Pg         *Postgres
	Tx         *sql.Tx
	Table      string
	Spec       *TableSpec
	InsertStmt *sql.Stmt
	InsertSql  string
	wg         *sync.WaitGroup
	rows       chan []interface{}

	mu  sync.Mutex
	err error
}

func newTableTx(pg *Postgres, spec *TableSpec) *tableTx {
	return &tableTx{
		Pg:    pg,
		Table: spec.FullName,
		Spec:  spec,
		wg:    &sync.WaitGroup{},
		rows:  make(chan []interface{}, 64),
	}
}

func (tt *tableTx) Begin() error {
	tx, err := tt.Pg.Db.Begin()
	if err != nil {
		return err
	}
	tt.Tx = tx

	sql := fmt.Sprintf(`TRUNCATE TABLE "%s"."%s"`, tt.Spec.Schema, tt.Table)
	if _, err = tx.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}

	tt.InsertSql = tt.Spec.CopySQL()
	stmt, err := tt.Tx.Prepare(tt.InsertSql)
	if err != nil {
		return &SQLError{tt.InsertSql, err}
	}
	tt.InsertStmt = stmt

	tt.wg.Add(1)
	go tt.loop()
	return nil
}

// Insert queues the row. Errors from previous rows are returned, the
// row is dropped after the first error.
func (tt *tableTx) Insert(row []interface{}) error {
	if err := tt.Err(); err != nil {
		return err
	}
	tt.rows <- row
	return nil
}

func (tt *tableTx) Err() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.err
}

func (tt *tableTx) loop() {
	defer tt.wg.Done()
	for row := range tt.rows {
		if tt.Err() != nil {
			continue
		}
		if _, err := tt.InsertStmt.Exec(row...); err != nil {
			tt.mu.Lock()
			tt.err = &SQLInsertError{SQLError{tt.InsertSql, err}, row}
			tt.mu.Unlock()
		}
	}
}

func (tt *tableTx) End() {
	if tt.rows == nil {
		return
	}
	close(tt.rows)
	tt.rows = nil
	tt.wg.Wait()
}

func (tt *tableTx) Commit() error {
	tt.End()
	if err := tt.Err(); err != nil {
		return err
	}
	if tt.InsertStmt != nil {
		// flush COPY
		if _, err := tt.InsertStmt.Exec(); err != nil {
			return &SQLError{tt.InsertSql, err}
		}
	}
	if err := tt.Tx.Commit(); err != nil {
		return err
	}
	tt.Tx = nil
	return nil
}

func (tt *tableTx) Rollback() error {
	tt.End()
	return rollbackIfTx(&tt.Tx)
}
