package main

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/proofworks/proofpipe/internal/store"
)

func openDB() (*sql.DB, string, func(), error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", func() {}, err
	}
	stateDir := filepath.Join(workDir, ".proofpipe")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, "", func() {}, err
	}
	dbPath := filepath.Join(stateDir, "proofpipe.db")
	storeDB, err := store.Open(dbPath)
	if err != nil {
		return nil, "", func() {}, err
	}
	return storeDB, workDir, func() { _ = storeDB.Close() }, nil
}
