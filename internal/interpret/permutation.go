package interpret

import (
    "math/rand"
    "sort"

    "gonum.org/v1/gonum/stat"

    "mlboard/internal/evaluate"
    "mlboard/internal/models"
)

type PermutationOptions struct {
    TopK       int
    Iterations int
    Seed       int64
}

// PermutationWeights ranks features by the drop in accuracy when each
// feature's column is shuffled. Ties keep input column order (stable sort).
func PermutationWeights(m models.Model, X [][]float64, y []int, names []string, opt PermutationOptions) []RankedFeature {
    return permutationRank(m, X, y, names, opt, func(yTrue, yPred []int) float64 {
        return evaluate.Accuracy(yTrue, yPred)
    })
}

// PermutationImportance is the second, independently derived ranking over the
// same inputs: the drop in macro-F1 under column shuffling.
func PermutationImportance(m models.Model, X [][]float64, y []int, names []string, opt PermutationOptions) []RankedFeature {
    classes := m.Classes()
    return permutationRank(m, X, y, names, opt, func(yTrue, yPred []int) float64 {
        return evaluate.MacroF1(yTrue, yPred, classes)
    })
}

func permutationRank(m models.Model, X [][]float64, y []int, names []string, opt PermutationOptions, score func(yTrue, yPred []int) float64) []RankedFeature {
    if opt.Iterations <= 0 {
        opt.Iterations = 1
    }
    if opt.TopK <= 0 {
        opt.TopK = 10
    }
    rng := rand.New(rand.NewSource(opt.Seed))

    // Work on a row-copied matrix so the caller's data is never mutated.
    work := make([][]float64, len(X))
    for i := range X {
        work[i] = append([]float64(nil), X[i]...)
    }
    base := score(y, m.Predict(work))

    nFeats := len(names)
    ranked := make([]RankedFeature, 0, nFeats)
    col := make([]float64, len(work))
    for j := 0; j < nFeats; j++ {
        for i := range work {
            col[i] = work[i][j]
        }
        drops := make([]float64, opt.Iterations)
        for it := 0; it < opt.Iterations; it++ {
            perm := rng.Perm(len(work))
            for i := range work {
                work[i][j] = col[perm[i]]
            }
            drops[it] = base - score(y, m.Predict(work))
        }
        for i := range work {
            work[i][j] = col[i]
        }
        mean := drops[0]
        std := 0.0
        if len(drops) > 1 {
            mean, std = stat.MeanStdDev(drops, nil)
        }
        ranked = append(ranked, RankedFeature{Feature: names[j], Index: j, Weight: mean, Std: std})
    }

    // Stable sort keeps input column order for equal weights.
    sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Weight > ranked[b].Weight })
    if len(ranked) > opt.TopK {
        ranked = ranked[:opt.TopK]
    }
    return ranked
}
