package models

import (
    "math"
    "math/rand"
)

type DTNode struct {
    Feature   int
    Threshold float64
    Left      *DTNode
    Right     *DTNode
    IsLeaf    bool
    // Dist is the class share of training rows reaching the node, kept on
    // internal nodes too so decision-path contributions can be read off.
    Dist []float64
}

type DecisionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    // ClassSet may be preset by an ensemble so every member shares the same
    // class ordering even when a bootstrap sample misses a class.
    ClassSet  []int
    NFeatures int
    Root      *DTNode

    rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 10, MinSamplesSplit: 2, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Classes() []int { return dt.ClassSet }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
    if dt.ClassSet == nil {
        dt.ClassSet = sortedUnique(y)
    }
    dt.NFeatures = len(X[0])
    dt.rng = rand.New(rand.NewSource(dt.Seed))
    pos := map[int]int{}
    for i, c := range dt.ClassSet {
        pos[c] = i
    }
    yc := make([]int, len(y))
    for i, v := range y {
        yc[i] = pos[v]
    }
    idx := make([]int, len(X))
    for i := range idx {
        idx[i] = i
    }
    dt.Root = dt.build(X, yc, idx, 0)
    return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
    out := make([]int, len(X))
    for i := range X {
        out[i] = dt.ClassSet[argmax(dt.predictDistOne(X[i]))]
    }
    return out
}

func (dt *DecisionTree) PredictProba(X [][]float64) [][]float64 {
    out := make([][]float64, len(X))
    for i := range X {
        out[i] = append([]float64(nil), dt.predictDistOne(X[i])...)
    }
    return out
}

func (dt *DecisionTree) predictDistOne(x []float64) []float64 {
    n := dt.Root
    if n == nil {
        return uniformDist(len(dt.ClassSet))
    }
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold {
            n = n.Left
        } else {
            n = n.Right
        }
        if n == nil {
            return uniformDist(len(dt.ClassSet))
        }
    }
    return n.Dist
}

// Contributions walks the decision path and attributes the change in class
// distribution at each split to the split feature.
func (dt *DecisionTree) Contributions(x []float64) [][]float64 {
    k := len(dt.ClassSet)
    out := make([][]float64, k)
    for c := 0; c < k; c++ {
        out[c] = make([]float64, dt.NFeatures)
    }
    n := dt.Root
    if n == nil {
        return out
    }
    for !n.IsLeaf {
        var child *DTNode
        if x[n.Feature] <= n.Threshold {
            child = n.Left
        } else {
            child = n.Right
        }
        if child == nil {
            break
        }
        for c := 0; c < k; c++ {
            out[c][n.Feature] += child.Dist[c] - n.Dist[c]
        }
        n = child
    }
    return out
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
    k := len(dt.ClassSet)
    node := &DTNode{Dist: classDist(y, idx, k)}
    if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || pure(node.Dist) {
        node.IsLeaf = true
        return node
    }
    bestFeature := -1
    bestThr := 0.0
    bestImp := math.MaxFloat64
    leftIdxBest := []int{}
    rightIdxBest := []int{}

    nFeats := len(X[0])
    feats := dt.pickFeatures(nFeats)
    for _, f := range feats {
        cand := dt.candidateThresholds(X, idx, f)
        for _, thr := range cand {
            lIdx, rIdx := splitIdx(X, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 {
                continue
            }
            imp := giniImpurity(y, lIdx, rIdx, k)
            if imp < bestImp {
                bestImp = imp
                bestFeature = f
                bestThr = thr
                leftIdxBest = lIdx
                rightIdxBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        node.IsLeaf = true
        return node
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = dt.build(X, y, leftIdxBest, depth+1)
    node.Right = dt.build(X, y, rightIdxBest, depth+1)
    return node
}

func classDist(y []int, idx []int, k int) []float64 {
    dist := make([]float64, k)
    for _, i := range idx {
        dist[y[i]]++
    }
    n := float64(len(idx))
    if n == 0 {
        return uniformDist(k)
    }
    for c := range dist {
        dist[c] /= n
    }
    return dist
}

func pure(dist []float64) bool {
    for _, p := range dist {
        if p == 1 {
            return true
        }
    }
    return false
}

func uniformDist(k int) []float64 {
    dist := make([]float64, k)
    for c := range dist {
        dist[c] = 1 / float64(k)
    }
    return dist
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if X[i][f] <= thr {
            l = append(l, i)
        } else {
            r = append(r, i)
        }
    }
    return l, r
}

func giniImpurity(y []int, lIdx, rIdx []int, k int) float64 {
    g := func(ids []int) float64 {
        if len(ids) == 0 {
            return 0
        }
        dist := classDist(y, ids, k)
        s := 1.0
        for _, p := range dist {
            s -= p * p
        }
        return s
    }
    gl := g(lIdx)
    gr := g(rIdx)
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl + wr
    return (wl/n)*gl + (wr/n)*gr
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx {
        values[j] = X[i][f]
    }
    for i := range values {
        j := dt.rng.Intn(len(values))
        values[i], values[j] = values[j], values[i]
    }
    m := int(math.Min(float64(dt.MaxThresholdsPerFe), float64(len(values))))
    out := make([]float64, 0, m)
    for i := 0; i < m; i++ {
        out = append(out, values[i])
    }
    return out
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
    if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
        out := make([]int, nFeats)
        for i := 0; i < nFeats; i++ {
            out[i] = i
        }
        return out
    }
    idx := make([]int, nFeats)
    for i := 0; i < nFeats; i++ {
        idx[i] = i
    }
    for i := range idx {
        j := dt.rng.Intn(nFeats)
        idx[i], idx[j] = idx[j], idx[i]
    }
    out := make([]int, dt.MaxFeatures)
    copy(out, idx[:dt.MaxFeatures])
    return out
}
