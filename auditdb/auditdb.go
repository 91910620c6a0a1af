// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package auditdb records clock adjustments applied to the DS3231 chip
// into the RTC audit database.
package auditdb // import "github.com/go-lpc/ds3231/auditdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// Adjustment describes one successful set-time operation: the time the
// chip held before, the time that was written and the protocol surface
// the request came through.
type Adjustment struct {
	ID     uint32
	Stamp  string // database-side timestamp of the record
	Old    string
	New    string
	Source string
}

// DB exposes convenience methods to record and retrieve clock
// adjustments from the RTC audit database.
type DB struct {
	db   *sql.DB
	name string // name of the audit database
}

// Open opens a connection to the audit database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("auditdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("auditdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("auditdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Record stores adj into the audit database.
func (db *DB) Record(ctx context.Context, adj Adjustment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"INSERT INTO adjustments (stamp, old_time, new_time, source) VALUES (NOW(), ?, ?, ?)",
		adj.Old, adj.New, adj.Source,
	)
	if err != nil {
		return fmt.Errorf("auditdb: could not record adjustment: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("auditdb: context error while recording adjustment: %w", err)
	}

	return nil
}

// LastAdjustment returns the most recent clock adjustment on record.
func (db *DB) LastAdjustment(ctx context.Context) (Adjustment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var adj Adjustment
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier, stamp, old_time, new_time, source FROM adjustments ORDER BY stamp DESC LIMIT 1",
	)
	if err != nil {
		return adj, fmt.Errorf("auditdb: could not query last adjustment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&adj.ID, &adj.Stamp, &adj.Old, &adj.New, &adj.Source)
		if err != nil {
			return adj, fmt.Errorf("auditdb: could not get last adjustment: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return adj, fmt.Errorf("auditdb: could not scan db for last adjustment: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return adj, fmt.Errorf("auditdb: context error while retrieving last adjustment: %w", err)
	}

	return adj, nil
}

// Adjustments returns up to limit clock adjustments, most recent first.
func (db *DB) Adjustments(ctx context.Context, limit int) ([]Adjustment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var adjs []Adjustment
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier, stamp, old_time, new_time, source FROM adjustments ORDER BY stamp DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return adjs, fmt.Errorf("auditdb: could not run adjustments query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var adj Adjustment
		err = rows.Scan(&adj.ID, &adj.Stamp, &adj.Old, &adj.New, &adj.Source)
		if err != nil {
			return adjs, fmt.Errorf("auditdb: could not scan row %d for adjustments: %w", i, err)
		}
		i++

		adjs = append(adjs, adj)
	}

	if err := rows.Err(); err != nil {
		return adjs, fmt.Errorf("auditdb: could not scan db for adjustments: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return adjs, fmt.Errorf("auditdb: context error while retrieving adjustments: %w", err)
	}

	return adjs, nil
}
