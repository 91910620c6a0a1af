// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtc-sql inspects the RTC audit database.
package main // import "github.com/go-lpc/ds3231/cmd/rtc-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/ds3231/auditdb"
)

const (
	dbname = "rtcsrv"
)

func main() {
	log.SetPrefix("rtc-sql: ")
	log.SetFlags(0)

	var (
		n = flag.Int("n", 10, "number of adjustments to display")
	)

	flag.Parse()

	db, err := auditdb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open RTC audit db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *n)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *auditdb.DB, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	last, err := db.LastAdjustment(ctx)
	if err != nil {
		return fmt.Errorf("could not get last adjustment: %w", err)
	}
	log.Printf("last: id=%d stamp=%q %q -> %q (src=%s)",
		last.ID, last.Stamp, last.Old, last.New, last.Source,
	)

	adjs, err := db.Adjustments(ctx, n)
	if err != nil {
		return fmt.Errorf("could not get adjustments: %w", err)
	}
	log.Printf("adjustments: %d", len(adjs))
	for i, adj := range adjs {
		log.Printf("row[%d]: id=%d stamp=%q %q -> %q (src=%s)",
			i, adj.ID, adj.Stamp, adj.Old, adj.New, adj.Source,
		)
	}

	return nil
}
