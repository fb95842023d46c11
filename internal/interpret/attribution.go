package interpret

import (
    "errors"
    "math"
    "sort"

    "mlboard/internal/models"
)

// GlobalAttribution ranks features by mean absolute decision-path
// contribution, aggregated across instances and classes.
func GlobalAttribution(m models.Model, X [][]float64, names []string, topK int) ([]RankedFeature, error) {
    ex, ok := m.(models.Explainer)
    if !ok {
        return nil, errors.New("model does not expose feature contributions")
    }
    if topK <= 0 {
        topK = 10
    }
    if len(X) == 0 {
        return nil, errors.New("no rows to attribute")
    }

    nFeats := len(names)
    totals := make([]float64, nFeats)
    for _, x := range X {
        contrib := ex.Contributions(x)
        for _, classRow := range contrib {
            for f := 0; f < nFeats && f < len(classRow); f++ {
                totals[f] += math.Abs(classRow[f])
            }
        }
    }
    denom := float64(len(X) * len(m.Classes()))
    ranked := make([]RankedFeature, nFeats)
    for f := 0; f < nFeats; f++ {
        ranked[f] = RankedFeature{Feature: names[f], Index: f, Weight: totals[f] / denom}
    }
    sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Weight > ranked[b].Weight })
    if len(ranked) > topK {
        ranked = ranked[:topK]
    }
    return ranked, nil
}

// LocalAttribution is the per-instance explanation path. Callers get
// ErrLocalAttribution until a single-record view is defined.
func LocalAttribution(m models.Model, x []float64) ([]RankedFeature, error) {
    return nil, ErrLocalAttribution
}
