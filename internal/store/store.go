// Package store provides the row-oriented persistence gateway. World state
// lives in memory; the store only sees inserts, updates, selects, and
// deletes keyed by table name.
package store

import "errors"

// ErrNoRows indicates a select or update matched nothing.
var ErrNoRows = errors.New("store: no matching rows")

// Row is a single persisted record keyed by column name.
type Row map[string]any

// Store is the contract every model object saves through. Implementations
// must be safe for use from a single goroutine at a time; the game funnels
// all calls through the tick goroutine.
type Store interface {
	Insert(table string, fields Row) (int64, error)
	Update(table string, id int64, fields Row) (int64, error)
	Select(table string, criteria Row) ([]Row, error)
	Delete(table string, criteria Row) (int64, error)
	Close() error
}
