package preprocess

import (
    "errors"
    "strconv"

    "github.com/montanaflynn/stats"

    "mlboard/internal/dataset"
)

// Transform is a fitted ordinal-encoding + mean-imputation pipeline. All of
// its parameters come from the training split passed to Fit; Apply never
// updates them, so leakage from validation/test into fit state cannot happen.
type Transform struct {
    Columns []string
    Numeric []bool
    // Codes holds the ordinal code per raw value for categorical columns,
    // assigned in order of first appearance in the training split.
    Codes []map[string]float64
    // Fill holds the train-split mean used for missing numeric cells and for
    // values unseen at fit time.
    Fill []float64
}

func missing(cell string) bool {
    return cell == "" || cell == "NA" || cell == "NaN"
}

// Fit computes encoding and imputation parameters from the training features.
func Fit(train *dataset.Table) (*Transform, error) {
    if train == nil || len(train.Rows) == 0 {
        return nil, errors.New("preprocess: empty training split")
    }
    nCols := len(train.Columns)
    t := &Transform{
        Columns: append([]string(nil), train.Columns...),
        Numeric: make([]bool, nCols),
        Codes:   make([]map[string]float64, nCols),
        Fill:    make([]float64, nCols),
    }
    for j := 0; j < nCols; j++ {
        numeric := true
        for _, row := range train.Rows {
            if missing(row[j]) {
                continue
            }
            if _, err := strconv.ParseFloat(row[j], 64); err != nil {
                numeric = false
                break
            }
        }
        t.Numeric[j] = numeric
        if numeric {
            vals := make([]float64, 0, len(train.Rows))
            for _, row := range train.Rows {
                if missing(row[j]) {
                    continue
                }
                v, _ := strconv.ParseFloat(row[j], 64)
                vals = append(vals, v)
            }
            if len(vals) == 0 {
                t.Fill[j] = 0
                continue
            }
            mean, err := stats.Mean(vals)
            if err != nil {
                return nil, err
            }
            t.Fill[j] = mean
            continue
        }
        codes := map[string]float64{}
        sum := 0.0
        for _, row := range train.Rows {
            if _, ok := codes[row[j]]; !ok {
                codes[row[j]] = float64(len(codes))
            }
        }
        for _, c := range codes {
            sum += c
        }
        t.Codes[j] = codes
        t.Fill[j] = sum / float64(len(codes))
    }
    return t, nil
}

// Apply encodes a table with the fitted parameters. Column order is fixed and
// equals the training feature order.
func (t *Transform) Apply(tab *dataset.Table) ([][]float64, error) {
    if len(tab.Columns) != len(t.Columns) {
        return nil, errors.New("preprocess: column count does not match fitted transform")
    }
    out := make([][]float64, len(tab.Rows))
    for i, row := range tab.Rows {
        vec := make([]float64, len(t.Columns))
        for j := range t.Columns {
            cell := row[j]
            if t.Numeric[j] {
                if missing(cell) {
                    vec[j] = t.Fill[j]
                    continue
                }
                v, err := strconv.ParseFloat(cell, 64)
                if err != nil {
                    // Non-numeric cell in a column fitted as numeric: treat
                    // like a missing value.
                    vec[j] = t.Fill[j]
                    continue
                }
                vec[j] = v
                continue
            }
            if code, ok := t.Codes[j][cell]; ok {
                vec[j] = code
            } else {
                vec[j] = t.Fill[j]
            }
        }
        out[i] = vec
    }
    return out, nil
}

// FeatureNames maps feature index to original column name.
func (t *Transform) FeatureNames() []string {
    return append([]string(nil), t.Columns...)
}

// FeatureIndex resolves a column name to its matrix index.
func (t *Transform) FeatureIndex(name string) (int, bool) {
    for j, c := range t.Columns {
        if c == name {
            return j, true
        }
    }
    return -1, false
}
