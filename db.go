// Database handle and lifecycle.
//
// Database is an immutable pair of file paths plus configuration. It
// holds no open handles and no state of its own; every operation goes
// through a Transaction created by Begin. Open creates missing files so
// later lock acquisitions always have something to lock.
package tomldb

import (
	"fmt"
	"log/slog"
	"os"
)

// Config holds database configuration options. The zero value is
// usable; Open fills in defaults.
type Config struct {
	SyncWrites    bool         // Call fsync after commit writes
	KeepHistory   bool         // Snapshot the previous data file on every commit
	HashAlgorithm int          // Checksum for history records: 1=xxHash3, 2=FNV1a, 3=Blake2b
	Logger        *slog.Logger // Destination for dropped-request logging
}

// Database references one data file and its journal. Immutable after
// Open; transactions may be created from it freely.
type Database struct {
	dataPath    string
	journalPath string
	config      Config
}

// Open prepares a database over dataPath. An empty journalPath defaults
// to dataPath + ".journal". Both files are created when absent, and an
// existing data file must parse.
func Open(dataPath, journalPath string, config Config) (*Database, error) {
	if journalPath == "" {
		journalPath = dataPath + ".journal"
	}
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	for _, path := range []string{dataPath, journalPath} {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		_ = f.Close()
	}

	// Fail fast on a data file this store cannot read back.
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dataPath, err)
	}
	if _, err := Parse(raw); err != nil {
		return nil, err
	}

	return &Database{dataPath: dataPath, journalPath: journalPath, config: config}, nil
}

// Begin returns a fresh transaction in the Empty state.
func (db *Database) Begin() *Transaction {
	return &Transaction{db: db, state: stateEmpty}
}

// DataPath returns the data file path.
func (db *Database) DataPath() string { return db.dataPath }

// JournalPath returns the journal file path.
func (db *Database) JournalPath() string { return db.journalPath }

// historyPath is where pre-commit snapshots accumulate.
func (db *Database) historyPath() string { return db.dataPath + ".history" }
