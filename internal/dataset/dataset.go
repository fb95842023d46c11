package dataset

import (
    "encoding/csv"
    "io"
    "sort"
)

// Table is a raw tabular dataset: a header plus row-major string cells.
// Cells stay unparsed until the preprocessor decides how to encode them.
type Table struct {
    Columns []string
    Rows    [][]string
}

type InvalidInputError struct {
    Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

// Ingest parses a delimited UTF-8 source (first row = header) and separates
// features from the designated target column. An empty targetColumn selects
// the last column of the source.
func Ingest(source io.Reader, targetColumn string) (features *Table, target []string, full *Table, err error) {
    if source == nil {
        return nil, nil, nil, &InvalidInputError{Reason: "no source"}
    }
    r := csv.NewReader(source)
    r.FieldsPerRecord = -1
    rows, err := r.ReadAll()
    if err != nil {
        return nil, nil, nil, &InvalidInputError{Reason: "malformed delimited input: " + err.Error()}
    }
    if len(rows) < 2 {
        return nil, nil, nil, &InvalidInputError{Reason: "source is empty"}
    }

    header := rows[0]
    if targetColumn == "" {
        targetColumn = header[len(header)-1]
    }
    targetIdx := -1
    for i, c := range header {
        if c == targetColumn {
            targetIdx = i
            break
        }
    }
    if targetIdx < 0 {
        return nil, nil, nil, &InvalidInputError{Reason: "target column not found: " + targetColumn}
    }

    full = &Table{Columns: header, Rows: make([][]string, 0, len(rows)-1)}
    features = &Table{Columns: make([]string, 0, len(header)-1)}
    target = make([]string, 0, len(rows)-1)
    for i, c := range header {
        if i != targetIdx {
            features.Columns = append(features.Columns, c)
        }
    }
    for _, row := range rows[1:] {
        if len(row) != len(header) {
            return nil, nil, nil, &InvalidInputError{Reason: "row width does not match header"}
        }
        full.Rows = append(full.Rows, row)
        fr := make([]string, 0, len(row)-1)
        for j, cell := range row {
            if j == targetIdx {
                target = append(target, cell)
            } else {
                fr = append(fr, cell)
            }
        }
        features.Rows = append(features.Rows, fr)
    }
    return features, target, full, nil
}

// Column returns the values of a named column.
func (t *Table) Column(name string) ([]string, bool) {
    for j, c := range t.Columns {
        if c == name {
            out := make([]string, len(t.Rows))
            for i := range t.Rows {
                out[i] = t.Rows[i][j]
            }
            return out, true
        }
    }
    return nil, false
}

// Select gathers the rows at the given indices into a new table sharing the
// same header. Row slices are reused, not copied.
func (t *Table) Select(idx []int) *Table {
    out := &Table{Columns: t.Columns, Rows: make([][]string, len(idx))}
    for i, j := range idx {
        out.Rows[i] = t.Rows[j]
    }
    return out
}

// Head returns the first n rows for preview purposes.
func (t *Table) Head(n int) [][]string {
    if n > len(t.Rows) {
        n = len(t.Rows)
    }
    return t.Rows[:n]
}

// DistinctValues lists the distinct values of a column, most frequent first.
// Ties keep first-appearance order.
func DistinctValues(values []string) []string {
    counts := map[string]int{}
    first := map[string]int{}
    for i, v := range values {
        if _, ok := counts[v]; !ok {
            first[v] = i
        }
        counts[v]++
    }
    out := make([]string, 0, len(counts))
    for v := range counts {
        out = append(out, v)
    }
    sort.SliceStable(out, func(i, j int) bool {
        if counts[out[i]] != counts[out[j]] {
            return counts[out[i]] > counts[out[j]]
        }
        return first[out[i]] < first[out[j]]
    })
    return out
}
