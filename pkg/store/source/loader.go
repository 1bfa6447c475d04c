package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Loader reads delimited exports into datasets.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the CSV file at path. A missing file yields *domain.SourceNotFoundError.
func (l *Loader) Load(ctx context.Context, path, enc string) (*domain.Dataset, error) {
	logger := zerolog.Ctx(ctx)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer file.Close()

	ds, err := Read(file, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	logger.Debug().
		Str("path", path).
		Int("columns", len(ds.Columns)).
		Int("rows", ds.Len()).
		Msg("source loaded")
	return ds, nil
}

// Read decodes r with the named encoding and parses it as CSV with a header row.
// Short rows are padded to the header width; blank lines are skipped.
func Read(r io.Reader, enc string) (*domain.Dataset, error) {
	decoder, err := Decoder(enc)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, decoder))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		if len(record) < len(header) {
			record = append(record, make([]string, len(header)-len(record))...)
		}
		rows = append(rows, record)
	}

	return domain.NewDataset(header, rows), nil
}

// Decoder returns a decoder for a source encoding name. UTF-8 input has its byte order
// mark stripped.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
}
