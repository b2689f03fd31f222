package serializer

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	emptyValue = "<empty>"
	nilValue   = "<nil>"
)

type tableRow struct {
	field string
	value string
}

// marshalTable flattens v into FIELD/VALUE rows. Nested keys are joined with
// "." and slice elements are addressed as "[i]". Integers are rendered with
// digit grouping.
func marshalTable(v any) ([]byte, error) {
	t := &tableBuilder{printer: message.NewPrinter(language.English)}
	t.flatten("", reflect.ValueOf(v))

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	if len(t.rows) == 0 {
		fmt.Fprintf(tw, "%s\t\n", emptyValue)
	}
	for _, r := range t.rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.field, r.value)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to serialize to table: %w", err)
	}
	return buf.Bytes(), nil
}

type tableBuilder struct {
	printer *message.Printer
	rows    []tableRow
}

func (t *tableBuilder) add(field, value string) {
	t.rows = append(t.rows, tableRow{field: field, value: value})
}

func (t *tableBuilder) flatten(prefix string, v reflect.Value) {
	if !v.IsValid() {
		if prefix != "" {
			t.add(prefix, nilValue)
		}
		return
	}

	if s, ok := stringer(v); ok {
		t.add(prefix, s)
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			if prefix != "" {
				t.add(prefix, nilValue)
			}
			return
		}
		t.flatten(prefix, v.Elem())
	case reflect.Struct:
		t.flattenStruct(prefix, v)
	case reflect.Map:
		if v.Len() == 0 {
			if prefix != "" {
				t.add(prefix, emptyValue)
			}
			return
		}
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, k := range keys {
			t.flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k))
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			t.add(prefix, string(v.Bytes()))
			return
		}
		if v.Len() == 0 {
			if prefix != "" {
				t.add(prefix, emptyValue)
			}
			return
		}
		for i := range v.Len() {
			t.flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		t.add(prefix, t.printer.Sprintf("%d", v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		t.add(prefix, t.printer.Sprintf("%d", v.Uint()))
	default:
		t.add(prefix, fmt.Sprint(v.Interface()))
	}
}

func (t *tableBuilder) flattenStruct(prefix string, v reflect.Value) {
	typ := v.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := fieldName(f)
		if skip {
			continue
		}
		if f.Anonymous && name == "" {
			t.flatten(prefix, v.Field(i))
			continue
		}
		if name == "" {
			name = f.Name
		}
		t.flatten(join(prefix, name), v.Field(i))
	}
}

// fieldName returns the json name of f, "" when the tag does not name it.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

// stringer renders struct values implementing fmt.Stringer, such as time.Time.
func stringer(v reflect.Value) (string, bool) {
	if v.Kind() != reflect.Struct || !v.CanInterface() {
		return "", false
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
