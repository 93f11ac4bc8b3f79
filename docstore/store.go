// Package docstore exposes registered gorm models as read-only collections
// that can be fetched whole or filtered, ordered and limited by field.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidQuery      = errors.New("invalid query")
)

// Operators accepted in filters.
const (
	OpEq  = "=="
	OpNeq = "!="
	OpLt  = "<"
	OpLte = "<="
	OpGt  = ">"
	OpGte = ">="
	OpIn  = "in"
)

const (
	Asc  = "asc"
	Desc = "desc"
)

// Filter is one field condition. Value must be a slice for OpIn.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Query selects documents from a collection. Direction defaults to desc;
// a zero Limit returns every match.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  string
	Limit      int
}

// Document is one row keyed by column name.
type Document map[string]any

type collection struct {
	model   any
	columns map[string]string // accepted field name -> column
}

// Store is safe for concurrent reads once registration is done.
type Store struct {
	db          *gorm.DB
	collections map[string]collection
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, collections: map[string]collection{}}
}

// Register exposes model (a pointer to a gorm model) under name. Fields may be
// addressed by column name or Go field name.
func (s *Store) Register(name string, model any) error {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	cols := map[string]string{}
	for _, f := range stmt.Schema.Fields {
		if f.DBName == "" {
			continue
		}
		cols[f.DBName] = f.DBName
		cols[f.Name] = f.DBName
	}
	s.collections[name] = collection{model: model, columns: cols}
	return nil
}

// Collections returns the registered names, sorted.
func (s *Store) Collections() []string {
	names := make([]string, 0, len(s.collections))
	for n := range s.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FetchAll returns every document of a collection.
func (s *Store) FetchAll(ctx context.Context, name string) ([]Document, error) {
	return s.Fetch(ctx, Query{Collection: name})
}

// Fetch runs q and returns the matching documents.
func (s *Store) Fetch(ctx context.Context, q Query) ([]Document, error) {
	c, ok := s.collections[q.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}

	tx := s.db.WithContext(ctx).Model(c.model)
	for _, f := range q.Filters {
		expr, err := c.condition(f)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr)
	}

	if q.OrderBy != "" {
		col, ok := c.columns[q.OrderBy]
		if !ok {
			return nil, fmt.Errorf("%w: unknown order field %q", ErrInvalidQuery, q.OrderBy)
		}
		dir := strings.ToLower(q.Direction)
		if dir == "" {
			dir = Desc
		}
		if dir != Asc && dir != Desc {
			return nil, fmt.Errorf("%w: direction %q", ErrInvalidQuery, q.Direction)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: dir == Desc})
	}

	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.Collection, err)
	}
	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = normalize(r)
	}
	return docs, nil
}

func (c collection) condition(f Filter) (clause.Expression, error) {
	col, ok := c.columns[f.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, f.Field)
	}
	column := clause.Column{Name: col}
	switch f.Op {
	case OpEq:
		return clause.Eq{Column: column, Value: f.Value}, nil
	case OpNeq:
		return clause.Neq{Column: column, Value: f.Value}, nil
	case OpLt:
		return clause.Lt{Column: column, Value: f.Value}, nil
	case OpLte:
		return clause.Lte{Column: column, Value: f.Value}, nil
	case OpGt:
		return clause.Gt{Column: column, Value: f.Value}, nil
	case OpGte:
		return clause.Gte{Column: column, Value: f.Value}, nil
	case OpIn:
		values, ok := toSlice(f.Value)
		if !ok || len(values) == 0 {
			return nil, fmt.Errorf("%w: %q needs a non-empty list", ErrInvalidQuery, OpIn)
		}
		return clause.IN{Column: column, Values: values}, nil
	}
	return nil, fmt.Errorf("%w: operator %q", ErrInvalidQuery, f.Op)
}

func toSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// drivers may hand text columns back as bytes
func normalize(r map[string]any) Document {
	d := make(Document, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			d[k] = string(b)
			continue
		}
		d[k] = v
	}
	return d
}

// ParseValue converts a query-string value to an int, float or bool when it
// looks like one, and leaves it as a string otherwise.
func ParseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	return raw
}

// ParseFilter reads "field:op:value". For the in operator the value is a
// comma separated list.
func ParseFilter(expr string) (Filter, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Filter{}, fmt.Errorf("%w: filter %q, want field:op:value", ErrInvalidQuery, expr)
	}
	f := Filter{Field: parts[0], Op: parts[1]}
	if f.Op == OpIn {
		var values []any
		for _, item := range strings.Split(parts[2], ",") {
			if item = strings.TrimSpace(item); item != "" {
				values = append(values, ParseValue(item))
			}
		}
		f.Value = values
		return f, nil
	}
	f.Value = ParseValue(parts[2])
	return f, nil
}
