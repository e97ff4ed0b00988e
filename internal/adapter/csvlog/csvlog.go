// Package csvlog reads and writes operation streams in the canonical CSV layout:
//
//	kind,timestamp,incoming_asset,incoming_amount,outgoing_asset,outgoing_amount,rate,fee,capital
//
// Receives fill the incoming columns, sends the outgoing columns.
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iho/cryptotax/internal/domain"
)

// Header is the canonical column order.
var Header = []string{
	"kind", "timestamp",
	"incoming_asset", "incoming_amount",
	"outgoing_asset", "outgoing_amount",
	"rate", "fee", "capital",
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// ParseError locates a bad row.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader streams operations from CSV. Columns are matched by header name, so
// their order is free and unknown columns are ignored.
type Reader struct {
	r       *csv.Reader
	columns map[string]int
}

// NewReader reads and checks the header row.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range []string{"kind", "timestamp", "capital"} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return &Reader{r: cr, columns: columns}, nil
}

// Next returns the next operation. It returns io.EOF after the last row.
func (r *Reader) Next() (domain.Operation, error) {
	for {
		row, err := r.r.Read()
		if err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}

		line, _ := r.r.FieldPos(0)
		op, err := r.record(row).Operation()
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		return op, nil
	}
}

// ReadAll returns every remaining operation in file order.
func (r *Reader) ReadAll() ([]domain.Operation, error) {
	var ops []domain.Operation
	for {
		op, err := r.Next()
		if errors.Is(err, io.EOF) {
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
}

// Read parses a whole CSV stream.
func Read(in io.Reader) ([]domain.Operation, error) {
	r, err := NewReader(in)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

func (r *Reader) record(row []string) domain.OperationRecord {
	return domain.OperationRecord{
		Kind:           r.field(row, "kind"),
		Timestamp:      r.field(row, "timestamp"),
		IncomingAsset:  r.field(row, "incoming_asset"),
		IncomingAmount: r.field(row, "incoming_amount"),
		OutgoingAsset:  r.field(row, "outgoing_asset"),
		OutgoingAmount: r.field(row, "outgoing_amount"),
		Rate:           r.field(row, "rate"),
		Fee:            r.field(row, "fee"),
		Capital:        r.field(row, "capital"),
	}
}

func (r *Reader) field(row []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Writer writes operations in the canonical layout.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewWriter creates a Writer. The header is written with the first operation.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends one operation.
func (w *Writer) Write(op domain.Operation) error {
	if !w.wroteHeader {
		if err := w.w.Write(Header); err != nil {
			return err
		}
		w.wroteHeader = true
	}

	rec, err := domain.RecordOf(op)
	if err != nil {
		return err
	}
	return w.w.Write([]string{
		rec.Kind, rec.Timestamp,
		rec.IncomingAsset, rec.IncomingAmount,
		rec.OutgoingAsset, rec.OutgoingAmount,
		rec.Rate, rec.Fee, rec.Capital,
	})
}

// WriteAll writes every operation and flushes.
func (w *Writer) WriteAll(ops []domain.Operation) error {
	for _, op := range ops {
		if err := w.Write(op); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
