package ingestion

import (
	"PaymentLedger/internal/event"
	fpmath "PaymentLedger/internal/math"
	"PaymentLedger/internal/observability"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names expected in the header row
const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

// ErrInvalidHeader is returned when the header row is missing a required column.
// It is fatal: without a header no row can be decoded.
var ErrInvalidHeader = errors.New("invalid csv header")

// RecordError describes a single malformed row. The row is skipped and
// decoding continues with the next one.
type RecordError struct {
	Line  int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reader decodes transaction records from CSV one row at a time, in input order.
// Columns are located by header name, fields are whitespace-trimmed, lines
// starting with '#' are comments and a row may omit its trailing amount.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	metrics *observability.Metrics
}

// NewReader wraps r. metrics may be nil.
func NewReader(r io.Reader, metrics *observability.Metrics) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.ReuseRecord = true

	return &Reader{
		csv:     cr,
		metrics: metrics,
	}
}

// Next returns the next decoded record. It returns io.EOF at the end of input,
// a *RecordError for a malformed row (the caller may keep reading), and any
// other error for failures that end the run.
func (r *Reader) Next() (event.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return event.Transaction{}, err
		}
	}

	record, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return event.Transaction{}, r.skip(&RecordError{Line: parseErr.Line, Field: "record", Err: parseErr.Err})
		}
		return event.Transaction{}, err
	}

	line, _ := r.csv.FieldPos(0)
	if r.metrics != nil {
		r.metrics.RecordsRead.Inc()
	}

	txn, recErr := r.decode(record, line)
	if recErr != nil {
		return event.Transaction{}, r.skip(recErr)
	}
	return txn, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{ColumnType, ColumnClient, ColumnTx} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrInvalidHeader, required)
		}
	}

	r.columns = columns
	return nil
}

// field returns the trimmed value of a column, or "" when the row is short
func (r *Reader) field(record []string, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) decode(record []string, line int) (event.Transaction, *RecordError) {
	eventType, err := event.ParseEventType(r.field(record, ColumnType))
	if err != nil {
		return event.Transaction{}, &RecordError{Line: line, Field: ColumnType, Err: err}
	}

	client, err := strconv.ParseUint(r.field(record, ColumnClient), 10, 16)
	if err != nil {
		return event.Transaction{}, &RecordError{Line: line, Field: ColumnClient, Err: err}
	}

	tx, err := strconv.ParseUint(r.field(record, ColumnTx), 10, 32)
	if err != nil {
		return event.Transaction{}, &RecordError{Line: line, Field: ColumnTx, Err: err}
	}

	amount, err := fpmath.ParseAmount(r.field(record, ColumnAmount))
	if err != nil {
		return event.Transaction{}, &RecordError{Line: line, Field: ColumnAmount, Err: err}
	}

	txn := event.Transaction{
		Type:   eventType,
		Client: uint16(client),
		Tx:     uint32(tx),
	}
	// Dispute lifecycle rows may carry a stray amount; it is never used
	if eventType.RequiresAmount() {
		txn.Amount = amount
	}
	return txn, nil
}

func (r *Reader) skip(err *RecordError) error {
	if r.metrics != nil {
		r.metrics.RecordsSkipped.WithLabelValues(err.Field).Inc()
	}
	return err
}
