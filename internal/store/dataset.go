package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrNoSnapshot means no ingest has ever been committed.
	ErrNoSnapshot = errors.New("no dataset has been ingested")
	// ErrIngest wraps every failure of Replace. The previous snapshot is
	// still current when it is returned.
	ErrIngest = errors.New("ingest failed")
)

type DatasetStore struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time

	// Replace holds the write side, Current the read side. The database
	// transaction covers other processes; the lock keeps this one from
	// ever interleaving a read between the delete and the re-insert.
	mu sync.RWMutex
}

func NewDatasetStore(db *sqlx.DB) *DatasetStore {
	return &DatasetStore{db: db, dialect: DialectOf(db), now: time.Now}
}

const (
	insertSCQuery = `INSERT INTO scs (
		id,
		request_date,
		description,
		status,
		priority,
		requester,
		department,
		category,
		purchase_date,
		order_id,
		lead_time_days,
		payment_term_days,
		amount,
		supplier,
		buyer
	) VALUES (
		:id,
		:request_date,
		:description,
		:status,
		:priority,
		:requester,
		:department,
		:category,
		:purchase_date,
		:order_id,
		:lead_time_days,
		:payment_term_days,
		:amount,
		:supplier,
		:buyer
	)`

	insertSavingQuery = `INSERT INTO savings (
		id,
		saving_date,
		order_id,
		supplier,
		initial_amount,
		final_amount,
		reduction_amount,
		reduction_percent,
		negotiation_notes,
		saving_type,
		buyer
	) VALUES (
		:id,
		:saving_date,
		:order_id,
		:supplier,
		:initial_amount,
		:final_amount,
		:reduction_amount,
		:reduction_percent,
		:negotiation_notes,
		:saving_type,
		:buyer
	)`

	insertSnapshotQuery = `INSERT INTO ingest_snapshot (
		upload_time,
		source_file,
		sc_count,
		saving_count,
		missing_columns
	) VALUES (
		:upload_time,
		:source_file,
		:sc_count,
		:saving_count,
		:missing_columns
	)`
)

func ingestErr(step string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrIngest, step, err)
}

// Replace discards the current snapshot and both tables and writes the new
// ones in a single transaction. Row IDs are reassigned from the slice order
// so reads come back in source order. missing is recorded with the snapshot.
func (ds *DatasetStore) Replace(ctx context.Context, scs []SC, savings []Saving, source string, missing ...string) (Snapshot, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	snapshot := Snapshot{
		UploadTime:  NewTimestamp(ds.now()),
		SourceFile:  source,
		SCCount:     len(scs),
		SavingCount: len(savings),
		Missing:     Labels(missing),
	}

	tx, err := ds.db.BeginTxx(ctx, nil)
	if err != nil {
		return Snapshot{}, ingestErr("begin transaction", err)
	}
	// No-op once committed.
	defer tx.Rollback()

	if ds.dialect == Postgres {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE scs, savings, ingest_snapshot IN ACCESS EXCLUSIVE MODE`); err != nil {
			return Snapshot{}, ingestErr("lock tables", err)
		}
	}

	for _, table := range []string{"scs", "savings", "ingest_snapshot"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Snapshot{}, ingestErr("clear "+table, err)
		}
	}

	if err := insertRows(ctx, tx, insertSCQuery, len(scs), func(i int) any {
		row := scs[i]
		row.ID = int64(i + 1)
		return row
	}); err != nil {
		return Snapshot{}, ingestErr("insert scs", err)
	}

	if err := insertRows(ctx, tx, insertSavingQuery, len(savings), func(i int) any {
		row := savings[i]
		row.ID = int64(i + 1)
		return row
	}); err != nil {
		return Snapshot{}, ingestErr("insert savings", err)
	}

	if _, err := tx.NamedExecContext(ctx, insertSnapshotQuery, snapshot); err != nil {
		return Snapshot{}, ingestErr("insert snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, ingestErr("commit", err)
	}

	return snapshot, nil
}

func insertRows(ctx context.Context, tx *sqlx.Tx, query string, n int, row func(i int) any) error {
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

func (ds *DatasetStore) readTxOptions() *sql.TxOptions {
	// Three SELECTs must see the same commit. SQLite transactions already
	// do; PostgreSQL needs more than the READ COMMITTED default.
	if ds.dialect == Postgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	}
	return nil
}

// Current returns the last committed dataset or ErrNoSnapshot.
func (ds *DatasetStore) Current(ctx context.Context) (*Dataset, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	tx, err := ds.db.BeginTxx(ctx, ds.readTxOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot, err := getSnapshot(ctx, tx)
	if err != nil {
		return nil, err
	}

	dataset := &Dataset{Snapshot: snapshot}

	err = tx.SelectContext(ctx, &dataset.SCs, `SELECT
		id, request_date, description, status, priority, requester, department,
		category, purchase_date, order_id, lead_time_days, payment_term_days,
		amount, supplier, buyer
	FROM scs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scs: %w", err)
	}

	err = tx.SelectContext(ctx, &dataset.Savings, `SELECT
		id, saving_date, order_id, supplier, initial_amount, final_amount,
		reduction_amount, reduction_percent, negotiation_notes, saving_type, buyer
	FROM savings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings: %w", err)
	}

	return dataset, nil
}

// Snapshot returns only the ingest metadata.
func (ds *DatasetStore) Snapshot(ctx context.Context) (Snapshot, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return getSnapshot(ctx, ds.db)
}

func getSnapshot(ctx context.Context, q sqlx.QueryerContext) (Snapshot, error) {
	var snapshot Snapshot
	err := sqlx.GetContext(ctx, q, &snapshot, `SELECT upload_time, source_file, sc_count, saving_count, missing_columns
	FROM ingest_snapshot ORDER BY upload_time DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query ingest snapshot: %w", err)
	}
	return snapshot, nil
}
