package models

import (
    "math"
    "math/rand"
)

// RandomForest bags seeded decision trees over bootstrap samples.
// MaxFeatures 0 lets Fit pick sqrt(n_features); setting it to the full
// feature count degenerates to plain bagging.
type RandomForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    ClassSet           []int
    Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
    return &RandomForest{NEstimators: 25, MaxDepth: 10, MinSamples: 2, MaxThresholdsPerFe: 32}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Classes() []int { return rf.ClassSet }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
    if rf.NEstimators <= 0 {
        rf.NEstimators = 25
    }
    rf.ClassSet = sortedUnique(y)
    n := len(X)
    nFeats := len(X[0])
    if rf.MaxFeatures <= 0 {
        rf.MaxFeatures = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
    }
    rng := rand.New(rand.NewSource(rf.Seed))
    rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
    for k := 0; k < rf.NEstimators; k++ {
        idx := make([]int, n)
        for i := 0; i < n; i++ {
            idx[i] = rng.Intn(n)
        }
        Xb := make([][]float64, n)
        yb := make([]int, n)
        for i := 0; i < n; i++ {
            Xb[i] = X[idx[i]]
            yb[i] = y[idx[i]]
        }
        dt := NewDecisionTree()
        dt.MaxDepth = rf.MaxDepth
        dt.MinSamplesSplit = rf.MinSamples
        dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
        dt.MaxFeatures = rf.MaxFeatures
        dt.Seed = rf.Seed + int64(k) + 1
        dt.ClassSet = rf.ClassSet
        if err := dt.Fit(Xb, yb); err != nil {
            return err
        }
        rf.Trees = append(rf.Trees, dt)
    }
    return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
    ps := rf.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps {
        out[i] = rf.ClassSet[argmax(ps[i])]
    }
    return out
}

func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
    n := len(X)
    k := len(rf.ClassSet)
    out := make([][]float64, n)
    for i := range out {
        out[i] = make([]float64, k)
    }
    if len(rf.Trees) == 0 {
        for i := range out {
            copy(out[i], uniformDist(k))
        }
        return out
    }
    for _, dt := range rf.Trees {
        p := dt.PredictProba(X)
        for i := 0; i < n; i++ {
            for c := 0; c < k; c++ {
                out[i][c] += p[i][c]
            }
        }
    }
    m := float64(len(rf.Trees))
    for i := 0; i < n; i++ {
        for c := 0; c < k; c++ {
            out[i][c] /= m
        }
    }
    return out
}

// Contributions averages decision-path contributions over the trees.
func (rf *RandomForest) Contributions(x []float64) [][]float64 {
    k := len(rf.ClassSet)
    out := make([][]float64, k)
    for c := 0; c < k; c++ {
        out[c] = make([]float64, len(x))
    }
    if len(rf.Trees) == 0 {
        return out
    }
    for _, dt := range rf.Trees {
        tc := dt.Contributions(x)
        for c := 0; c < k; c++ {
            for f := range tc[c] {
                out[c][f] += tc[c][f]
            }
        }
    }
    m := float64(len(rf.Trees))
    for c := 0; c < k; c++ {
        for f := range out[c] {
            out[c][f] /= m
        }
    }
    return out
}
