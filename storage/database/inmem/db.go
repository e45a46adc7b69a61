package inmemdb

import (
	"sync"

	"github.com/ecole-ece/vitrine/core/content"
)

type (
	// DB is a process-local store used in development and tests.
	DB struct {
		page *pageTable
	}

	pageTable struct {
		sync.RWMutex
		table map[string]*content.Document // by key
	}
)

func Open() (*DB, error) {
	db := &DB{
		page: &pageTable{table: make(map[string]*content.Document)},
	}
	return db, nil
}
