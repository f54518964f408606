// Pre-commit snapshots of the data file.
//
// With Config.KeepHistory set, every guaranteed commit first appends
// one single-line JSON record to <data>.history holding the previous
// data-file content, zstd-compressed and ascii85-encoded, plus a
// checksum of the uncompressed bytes. The snapshot is taken from the
// bytes read at Write time, before the commit transition truncates the
// data file, so the record always describes the state the commit
// replaced. Recovery tooling can restore any committed state by
// re-reading the records in order.
package tomldb

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

// Snapshot is one point-in-time copy of the data file.
type Snapshot struct {
	Timestamp int64  `json:"_ts"`  // Unix milliseconds at commit
	Algorithm int    `json:"_alg"` // Checksum algorithm
	Sum       string `json:"_sum"` // 16 hex chars over uncompressed content
	Data      string `json:"_d"`   // Compressed, ascii85-encoded content
}

// Content returns the snapshot's uncompressed data-file content,
// verifying the checksum.
func (s *Snapshot) Content() ([]byte, error) {
	data, err := decompress(s.Data)
	if err != nil {
		return nil, err
	}
	if checksum(data, s.Algorithm) != s.Sum {
		return nil, fmt.Errorf("%w: want %s", ErrChecksum, s.Sum)
	}
	return data, nil
}

// appendHistory records prev as a snapshot line.
func (db *Database) appendHistory(prev []byte) error {
	snap := Snapshot{
		Timestamp: time.Now().UnixMilli(),
		Algorithm: db.config.HashAlgorithm,
		Sum:       checksum(prev, db.config.HashAlgorithm),
		Data:      compress(prev),
	}
	line, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	f, err := os.OpenFile(db.historyPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if db.config.SyncWrites {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("syncing history file: %w", err)
		}
	}
	return nil
}

// RestoreHistory rewrites the data file with the content of snapshot n
// (zero-based, in History order), verified against its checksum. The
// write takes the same locks as a commit, and with KeepHistory set the
// replaced state is snapshotted first, so a restore is itself
// restorable.
func (db *Database) RestoreHistory(ctx context.Context, n int) error {
	snaps, err := db.History()
	if err != nil {
		return err
	}
	if n < 0 || n >= len(snaps) {
		return fmt.Errorf("no snapshot %d (history holds %d)", n, len(snaps))
	}
	content, err := snaps[n].Content()
	if err != nil {
		return err
	}
	// The snapshot must still parse before it clobbers the data file.
	if _, err := Parse(content); err != nil {
		return err
	}

	tx := db.Begin()
	defer tx.Close()
	j, err := tx.Write(ctx)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if db.config.KeepHistory {
		if err := db.appendHistory(j.prev); err != nil {
			return err
		}
	}

	df := tx.data.File()
	if _, err := df.Write(content); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if db.config.SyncWrites {
		if err := df.Sync(); err != nil {
			return fmt.Errorf("syncing data file: %w", err)
		}
	}
	return nil
}

// History returns every snapshot in chronological (append) order.
func (db *Database) History() ([]Snapshot, error) {
	f, err := os.Open(db.historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var out []Snapshot
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		out = append(out, snap)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning history file: %w", err)
	}
	return out, nil
}
