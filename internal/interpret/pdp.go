package interpret

import (
    "sort"

    "mlboard/internal/models"
    "mlboard/internal/preprocess"
)

const pdpGridPoints = 10

// ComputePartialDependence averages the model's predicted probability for one
// class while one feature sweeps a grid over its observed range. The class
// label resolves to a probability column through the label encoder and the
// model's learned class ordering, never through a positional guess.
func ComputePartialDependence(m models.Model, X [][]float64, names []string, feature, classLabel string, labels *preprocess.LabelEncoder) (*Curve, error) {
    j := -1
    for i, n := range names {
        if n == feature {
            j = i
            break
        }
    }
    if j < 0 {
        return nil, &UnknownFeatureError{Feature: feature}
    }

    code, ok := labels.Code(classLabel)
    if !ok {
        return nil, &UnknownClassError{Class: classLabel}
    }
    ci := -1
    for i, c := range m.Classes() {
        if c == code {
            ci = i
            break
        }
    }
    if ci < 0 {
        return nil, &UnknownClassError{Class: classLabel}
    }

    grid := gridValues(X, j)
    work := make([][]float64, len(X))
    for i := range X {
        work[i] = append([]float64(nil), X[i]...)
    }
    curve := &Curve{Feature: feature, Class: classLabel, Grid: grid, Values: make([]float64, len(grid))}
    for gi, v := range grid {
        for i := range work {
            work[i][j] = v
        }
        probas := m.PredictProba(work)
        sum := 0.0
        for i := range probas {
            sum += probas[i][ci]
        }
        curve.Values[gi] = sum / float64(len(probas))
    }
    return curve, nil
}

// gridValues returns the sorted distinct values of a column, thinned to at
// most pdpGridPoints evenly spaced entries.
func gridValues(X [][]float64, j int) []float64 {
    seen := map[float64]bool{}
    vals := []float64{}
    for i := range X {
        v := X[i][j]
        if !seen[v] {
            seen[v] = true
            vals = append(vals, v)
        }
    }
    sort.Float64s(vals)
    if len(vals) <= pdpGridPoints {
        return vals
    }
    out := make([]float64, pdpGridPoints)
    for k := 0; k < pdpGridPoints; k++ {
        idx := k * (len(vals) - 1) / (pdpGridPoints - 1)
        out[k] = vals[idx]
    }
    return out
}
