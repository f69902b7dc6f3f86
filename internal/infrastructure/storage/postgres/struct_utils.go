package postgres

import (
	"reflect"
	"sync"
)

// column maps a "db" tag to the field's index path, embedded structs included.
type column struct {
	name  string
	index []int
}

var columnCache sync.Map // map[reflect.Type][]column

// columnsOf returns the tagged columns of t in declaration order, caching per type.
// Embedded structs (entity.BaseDocument, entity.BaseEntity) are flattened in place.
func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		cols = appendColumns(cols, t, nil)
	}
	columnCache.Store(t, cols)
	return cols
}

func appendColumns(cols []column, t reflect.Type, prefix []int) []column {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append(make([]int, 0, len(prefix)+1), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			cols = appendColumns(cols, field.Type, index)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: index})
	}
	return cols
}

// ExtractDBColumns lists the "db" columns of T, used as the SELECT list of a repository.
//
//	columns := ExtractDBColumns[invoice.Invoice]()
//	// ["id", "version", "created_at", "updated_at", "number", ...]
func ExtractDBColumns[T any]() []string {
	cols := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// StructToMap converts a struct (or pointer to one) to column -> value.
// Fields without a "db" tag, or tagged "-", are skipped. Returns nil for non-structs.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}
