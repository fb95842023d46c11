package models

import "sort"

// Model is a trained multiclass classifier. PredictProba returns one
// probability row per input, with columns following Classes() order (the
// learned class ordering, ascending by class code).
type Model interface {
    Fit(X [][]float64, y []int) error
    Predict(X [][]float64) []int
    PredictProba(X [][]float64) [][]float64
    Classes() []int
    Name() string
}

// Explainer reports per-prediction feature contributions, one row per class
// in Classes() order. All three model families implement it via decision-path
// contributions.
type Explainer interface {
    Contributions(x []float64) [][]float64
}

// Kind selects a model family.
type Kind int

const (
    KindGradientBoosting Kind = iota // boosted stumps, 100 rounds
    KindBoostedTrees                 // boosted depth-3 trees, 25 rounds
    KindRandomForest                 // 25 trees
)

func (k Kind) String() string {
    switch k {
    case KindGradientBoosting:
        return "gb"
    case KindBoostedTrees:
        return "bt"
    case KindRandomForest:
        return "rf"
    }
    return "unknown"
}

type UnsupportedModelError struct {
    Kind string
}

func (e *UnsupportedModelError) Error() string { return "unsupported model kind: " + e.Kind }

// KindFromString resolves a user-facing model selector.
func KindFromString(s string) (Kind, error) {
    switch s {
    case "gb", "gradient-boosting":
        return KindGradientBoosting, nil
    case "bt", "boosted-trees":
        return KindBoostedTrees, nil
    case "rf", "random-forest":
        return KindRandomForest, nil
    }
    return 0, &UnsupportedModelError{Kind: s}
}

// Train instantiates one family with its fixed hyperparameters and fits it.
// Fit failures propagate unwrapped.
func Train(kind Kind, X [][]float64, y []int, seed int64) (Model, error) {
    var mdl Model
    switch kind {
    case KindGradientBoosting:
        gb := NewGradientBoosting()
        gb.Seed = seed
        mdl = gb
    case KindBoostedTrees:
        bt := NewBoostedTrees()
        bt.Seed = seed
        mdl = bt
    case KindRandomForest:
        rf := NewRandomForest()
        rf.Seed = seed
        mdl = rf
    default:
        return nil, &UnsupportedModelError{Kind: kind.String()}
    }
    if err := mdl.Fit(X, y); err != nil {
        return nil, err
    }
    return mdl, nil
}

func sortedUnique(y []int) []int {
    seen := map[int]bool{}
    out := []int{}
    for _, v := range y {
        if !seen[v] {
            seen[v] = true
            out = append(out, v)
        }
    }
    sort.Ints(out)
    return out
}

func argmax(row []float64) int {
    best := 0
    for i := 1; i < len(row); i++ {
        if row[i] > row[best] {
            best = i
        }
    }
    return best
}
