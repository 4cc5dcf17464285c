package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats a slice of structs as a borderless table
type TableFormatter struct {
	// Fields specifies which fields to include (empty = all fields)
	Fields []string
	// FieldLabels provides custom labels for fields (key = json field name, value = display label)
	FieldLabels map[string]string
}

// Write outputs the data as a table
func (f *TableFormatter) Write(w io.Writer, data interface{}) error {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr && !val.IsNil() {
		val = val.Elem()
	}
	if val.Kind() != reflect.Slice {
		val = reflect.ValueOf([]interface{}{data})
	}
	if val.Len() == 0 {
		fmt.Fprintln(w, "No items found")
		return nil
	}

	first := reflect.Indirect(reflect.ValueOf(val.Index(0).Interface()))
	headers := f.getHeaders(first)
	if len(headers) == 0 {
		fmt.Fprintln(w, "No items found")
		return nil
	}

	displayHeaders := make([]string, len(headers))
	for i, h := range headers {
		if label, ok := f.FieldLabels[h]; ok {
			displayHeaders[i] = label
		} else {
			displayHeaders[i] = strings.ToUpper(h)
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(displayHeaders)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for i := 0; i < val.Len(); i++ {
		item := reflect.Indirect(reflect.ValueOf(val.Index(i).Interface()))
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = formatValue(fieldByJSONName(item, h))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

func (f *TableFormatter) getHeaders(val reflect.Value) []string {
	if len(f.Fields) > 0 {
		return f.Fields
	}
	if val.Kind() != reflect.Struct {
		return []string{"value"}
	}
	t := val.Type()
	headers := make([]string, 0, val.NumField())
	for i := 0; i < val.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag := jsonTag(field); tag != "" && tag != "-" {
			headers = append(headers, tag)
		}
	}
	return headers
}

func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case string:
		return t
	case int:
		if t == 0 {
			return ""
		}
	}
	return fmt.Sprintf("%v", v)
}

func jsonTag(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return ""
	}
	// "name,omitempty" -> "name"
	return strings.Split(tag, ",")[0]
}

// fieldByJSONName returns the struct field whose json tag or Go name is name.
func fieldByJSONName(v reflect.Value, name string) interface{} {
	if v.Kind() != reflect.Struct {
		if name == "value" && v.IsValid() {
			return v.Interface()
		}
		return nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if jsonTag(field) == name || field.Name == name {
			return v.Field(i).Interface()
		}
	}
	return nil
}
