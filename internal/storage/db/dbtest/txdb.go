// Package dbtest holds database doubles and a PostgreSQL container helper for tests.
package dbtest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

var _ db.DB = (*TxDB)(nil)

// TxDB is a db.DB for unit tests of code that only opens transactions and hands
// the tx to mocked repositories. It never runs SQL.
type TxDB struct {
	// BeginErr is returned by WithTx without calling the function.
	BeginErr error

	Begun      int
	Committed  int
	RolledBack int
}

func (d *TxDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	if d.BeginErr != nil {
		return d.BeginErr
	}

	d.Begun++
	if err := txFunc(d); err != nil {
		d.RolledBack++
		return err
	}

	d.Committed++
	return nil
}

func (d *TxDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("dbtest: TxDB does not execute statements")
}

func (d *TxDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("dbtest: TxDB does not execute statements")
}

func (d *TxDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("dbtest: TxDB does not execute statements")
}
