package quire

import (
	"context"
	"encoding/csv"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Model performs record operations on one sheet using a fixed schema.
// A record's id is its 1-based row number.
type Model struct {
	db     *DB
	schema *Schema
	sheet  string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithSheet binds the model to the named sheet instead of the first one.
func WithSheet(name string) ModelOption {
	return func(m *Model) {
		m.sheet = name
	}
}

// Data holds field values keyed by field name, as passed to InsertOne and
// UpdateOne.
type Data map[string]any

type getOptions struct {
	softDeleted bool
}

// GetOption configures GetOne.
type GetOption func(*getOptions)

// WithSoftDeleted makes GetOne return soft-deleted records.
func WithSoftDeleted() GetOption {
	return func(o *getOptions) {
		o.softDeleted = true
	}
}

var rowNumberPattern = regexp.MustCompile(`![A-Z]+(\d+)`)

// Schema returns the schema the model is bound to.
func (m *Model) Schema() *Schema {
	return m.schema
}

// InsertOne appends data as a new row and returns its id. createdAt
// defaults to the current time; every required declared field must be set.
func (m *Model) InsertOne(ctx context.Context, data Data) (string, error) {
	for name := range data {
		f, ok := m.schema.Field(name)
		if !ok {
			return "", &UnknownFieldError{Field: name}
		}
		if f.Deleted {
			return "", &FieldValidationError{Field: name, Reason: "field was deleted"}
		}
	}

	row := make([]interface{}, m.schema.Len())
	for i, f := range m.schema.fields {
		if f.Deleted {
			continue
		}
		v, ok := data[f.Name]
		if !ok && f.Name == FieldCreatedAt {
			v, ok = m.db.timeNow(), true
		}
		if !ok {
			if !f.Optional {
				return "", &FieldValidationError{Field: f.Name, Reason: "required"}
			}
			continue
		}
		cell, err := f.serialize(v)
		if err != nil {
			return "", err
		}
		row[i] = cell
	}

	written, err := m.db.client.Append(ctx, m.a1("A1"), [][]interface{}{row})
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	if written == "" {
		return "", fmt.Errorf("failed to insert record: %w", ErrNoWrittenRange)
	}

	id, err := extractRowNumber(written)
	if err != nil {
		return "", err
	}

	m.db.log().Debug().Str("id", id).Str("range", written).Msg("record inserted")
	return id, nil
}

// UpdateOne writes the given fields of an existing record and stamps
// updatedAt. System fields and deleted fields can't be written.
func (m *Model) UpdateOne(ctx context.Context, id string, data Data) error {
	row, err := parseID(id)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	writes := make([]ValueRange, 0, len(names)+1)
	for _, name := range names {
		f, ok := m.schema.Field(name)
		if !ok {
			return &UnknownFieldError{Field: name}
		}
		if IsSystemField(name) {
			return &FieldValidationError{Field: name, Reason: "is a system field, can't update it manually"}
		}
		if f.Deleted {
			return &FieldValidationError{Field: name, Reason: "was deleted, can't update it"}
		}
		cell, err := f.serialize(data[name])
		if err != nil {
			return err
		}
		if cell == nil {
			cell = ""
		}
		writes = append(writes, ValueRange{
			Range:  m.a1(f.Column + strconv.Itoa(row)),
			Values: [][]interface{}{{cell}},
		})
	}

	if _, err := m.GetOne(ctx, id); err != nil {
		return err
	}

	updatedAt, _ := m.schema.Field(FieldUpdatedAt)
	writes = append(writes, ValueRange{
		Range:  m.a1(updatedAt.Column + strconv.Itoa(row)),
		Values: [][]interface{}{{FormatDate(m.db.timeNow())}},
	})

	if err := m.db.client.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to update record %s: %w", id, err)
	}

	m.db.log().Debug().Str("id", id).Int("fields", len(names)).Msg("record updated")
	return nil
}

// GetOne reads the record with the given id. A row with an empty createdAt
// cell does not exist. Soft-deleted records are reported as not found
// unless WithSoftDeleted is passed.
func (m *Model) GetOne(ctx context.Context, id string, opts ...GetOption) (*Record, error) {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	row, err := parseID(id)
	if err != nil {
		return nil, err
	}

	values, err := m.db.client.Read(ctx, m.a1(fmt.Sprintf("%d:%d", row, row)))
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	if len(values) == 0 || cellText(values[0], 0) == "" {
		return nil, &NotFoundError{ID: id}
	}

	deletedAt, _ := m.schema.Field(FieldDeletedAt)
	if !o.softDeleted && cellText(values[0], m.schema.index[deletedAt.Name]) != "" {
		return nil, &NotFoundError{ID: id}
	}

	return decodeRow(id, values[0], m.schema.fields), nil
}

// DeleteOne soft-deletes a record by stamping its deletedAt cell. The row
// itself is kept.
func (m *Model) DeleteOne(ctx context.Context, id string) error {
	row, err := parseID(id)
	if err != nil {
		return err
	}

	if _, err := m.GetOne(ctx, id); err != nil {
		return err
	}

	deletedAt, _ := m.schema.Field(FieldDeletedAt)
	range_ := m.a1(deletedAt.Column + strconv.Itoa(row))
	if err := m.db.client.Write(ctx, range_, [][]interface{}{{FormatDate(m.db.timeNow())}}); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	m.db.log().Debug().Str("id", id).Msg("record deleted")
	return nil
}

// FindMany runs q against the query endpoint. Soft-deleted rows are excluded
// unless a condition of q applies an operator to deletedAt or q sets
// IncludeDeleted.
// Records returned by FindMany have no ID.
func (m *Model) FindMany(ctx context.Context, q Query) ([]*Record, error) {
	if !q.IncludeDeleted && !References(q.Filter, FieldDeletedAt) {
		notDeleted := Where(FieldDeletedAt).IsNull()
		if q.Filter == nil {
			q.Filter = notDeleted
		} else {
			q.Filter = And{q.Filter, notDeleted}
		}
	}

	text, err := BuildQuery(q, m.schema)
	if err != nil {
		return nil, err
	}
	fields, err := selectedFields(q, m.schema)
	if err != nil {
		return nil, err
	}

	logger := m.db.log().With().Str("request_id", uuid.NewString()).Logger()
	logger.Debug().Str("query", text).Msg("running query")

	body, err := m.db.client.Query(ctx, m.sheet, text)
	if err != nil {
		logger.Error().Err(err).Msg("query failed")
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records, err := decodeCSV(body, fields)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("records", len(records)).Msg("query done")
	return records, nil
}

// a1 prefixes ref with the model's sheet, if any.
func (m *Model) a1(ref string) string {
	if m.sheet == "" {
		return ref
	}
	return "'" + strings.ReplaceAll(m.sheet, "'", "''") + "'!" + ref
}

// decodeCSV decodes a query response. The first line holds column labels
// and is skipped; cells are matched to fields by position.
func decodeCSV(body string, fields []Field) ([]*Record, error) {
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1

	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}

	records := make([]*Record, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		row := make([]interface{}, len(line))
		for j, cell := range line {
			row[j] = cell
		}
		records = append(records, decodeRow("", row, fields))
	}
	return records, nil
}

func decodeRow(id string, row []interface{}, fields []Field) *Record {
	rec := &Record{ID: id, Values: make(map[string]any, len(fields))}
	for i, f := range fields {
		if f.Deleted {
			continue
		}
		var cell any
		if i < len(row) {
			cell = row[i]
		}
		rec.Values[f.Name] = Deserialize(cell, f)
	}
	return rec
}

func cellText(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func extractRowNumber(a1 string) (string, error) {
	match := rowNumberPattern.FindStringSubmatch(a1)
	if match == nil {
		return "", fmt.Errorf("row number couldn't be parsed from %q", a1)
	}
	return match[1], nil
}

func parseID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || strconv.Itoa(n) != id {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}
