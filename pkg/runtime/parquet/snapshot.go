package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/de-tools/case-atlas/pkg/models/store"
)

const flushInterval = 100_000

// SnapshotRow is the on-disk layout of one aging bucket cell.
type SnapshotRow struct {
	RunID   string `parquet:"run_id"`
	Profile string `parquet:"profile"`
	Drug    string `parquet:"drug"`
	Status  string `parquet:"status"`
	Reason  string `parquet:"reason"`
	CaseID  string `parquet:"case_id"`
	Bucket  string `parquet:"bucket"`
	Count   int64  `parquet:"count"`
}

// SnapshotWriter writes aging snapshot rows to a Parquet file.
type SnapshotWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[SnapshotRow]
	count  int
}

func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot parquet: %w", err)
	}
	writer := parquet.NewGenericWriter[SnapshotRow](file,
		parquet.Compression(&parquet.Snappy),
	)
	return &SnapshotWriter{file: file, writer: writer}, nil
}

func (w *SnapshotWriter) Write(row SnapshotRow) error {
	if _, err := w.writer.Write([]SnapshotRow{row}); err != nil {
		return fmt.Errorf("write snapshot row: %w", err)
	}
	w.count++
	if w.count%flushInterval == 0 {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("flush snapshot: %w", err)
		}
	}
	return nil
}

// Close flushes and closes the writer.
func (w *SnapshotWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close snapshot writer: %w", err)
	}
	return w.file.Close()
}

func (w *SnapshotWriter) Count() int { return w.count }

// Exporter persists run snapshots as Parquet files.
type Exporter interface {
	Export(path string, records []store.SnapshotRecord) error
}

type fileExporter struct{}

func NewExporter() Exporter {
	return &fileExporter{}
}

func (fileExporter) Export(path string, records []store.SnapshotRecord) error {
	w, err := NewSnapshotWriter(path)
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(FromRecord(r)); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func FromRecord(r store.SnapshotRecord) SnapshotRow {
	return SnapshotRow{
		RunID:   r.RunID,
		Profile: r.Profile,
		Drug:    r.Drug,
		Status:  r.Status,
		Reason:  r.Reason,
		CaseID:  r.CaseID,
		Bucket:  r.Bucket,
		Count:   r.Count,
	}
}
