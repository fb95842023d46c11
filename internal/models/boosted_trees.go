package models

import "math"

type RTNode struct {
    Feature   int
    Threshold float64
    Left      *RTNode
    Right     *RTNode
    IsLeaf    bool
    // Value is the mean residual of training rows at the node, kept on
    // internal nodes for decision-path contributions.
    Value float64
}

// BoostedTrees is one-vs-rest gradient boosting over depth-limited regression
// trees, the deeper-learner counterpart to the stump-based GradientBoosting.
type BoostedTrees struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    LearningRate       float64
    Seed               int64
    ClassSet           []int
    InitScore          []float64
    Trees              [][]*RTNode
}

func NewBoostedTrees() *BoostedTrees {
    return &BoostedTrees{NEstimators: 25, MaxDepth: 3, MinSamples: 2, MaxThresholdsPerFe: 32, LearningRate: 0.3}
}

func (bt *BoostedTrees) Name() string { return "BoostedTrees" }

func (bt *BoostedTrees) Classes() []int { return bt.ClassSet }

func (bt *BoostedTrees) Fit(X [][]float64, y []int) error {
    n := len(X)
    if n == 0 {
        return nil
    }
    bt.ClassSet = sortedUnique(y)
    k := len(bt.ClassSet)
    bt.InitScore = make([]float64, k)
    bt.Trees = make([][]*RTNode, k)
    for ci, cls := range bt.ClassSet {
        yb := make([]int, n)
        pos := 0
        for i := range y {
            if y[i] == cls {
                yb[i] = 1
                pos++
            }
        }
        base := float64(pos) / float64(n)
        if base <= 1e-3 {
            base = 1e-3
        }
        if base >= 1-1e-3 {
            base = 1 - 1e-3
        }
        bt.InitScore[ci] = math.Log(base / (1.0 - base))
        bt.Trees[ci] = bt.fitBinary(X, yb, bt.InitScore[ci])
    }
    return nil
}

func (bt *BoostedTrees) fitBinary(X [][]float64, y []int, init float64) []*RTNode {
    n := len(X)
    F := make([]float64, n)
    for i := 0; i < n; i++ {
        F[i] = init
    }
    trees := make([]*RTNode, 0, bt.NEstimators)
    idx := make([]int, n)
    for i := range idx {
        idx[i] = i
    }
    for m := 0; m < bt.NEstimators; m++ {
        r := make([]float64, n)
        for i := 0; i < n; i++ {
            r[i] = float64(y[i]) - sigmoid(F[i])
        }
        root := bt.buildReg(X, r, idx, 0)
        if root == nil {
            break
        }
        trees = append(trees, root)
        for i := 0; i < n; i++ {
            F[i] += bt.LearningRate * regPredictOne(root, X[i])
        }
    }
    return trees
}

func (bt *BoostedTrees) buildReg(X [][]float64, r []float64, idx []int, depth int) *RTNode {
    node := &RTNode{Value: meanAt(r, idx)}
    if depth >= bt.MaxDepth || len(idx) < 2*bt.MinSamples {
        node.IsLeaf = true
        return node
    }
    bestFeature := -1
    bestThr := 0.0
    bestSSE := math.MaxFloat64
    var bestL, bestR []int
    nFeats := len(X[0])
    for j := 0; j < nFeats; j++ {
        for _, thr := range quantileThresholdsAt(X, idx, j, bt.MaxThresholdsPerFe) {
            l, rt := splitIdx(X, idx, j, thr)
            if len(l) < bt.MinSamples || len(rt) < bt.MinSamples {
                continue
            }
            la := meanAt(r, l)
            ra := meanAt(r, rt)
            sse := 0.0
            for _, i := range l {
                d := r[i] - la
                sse += d * d
            }
            for _, i := range rt {
                d := r[i] - ra
                sse += d * d
            }
            if sse < bestSSE {
                bestSSE = sse
                bestFeature = j
                bestThr = thr
                bestL = l
                bestR = rt
            }
        }
    }
    if bestFeature == -1 {
        node.IsLeaf = true
        return node
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = bt.buildReg(X, r, bestL, depth+1)
    node.Right = bt.buildReg(X, r, bestR, depth+1)
    return node
}

func regPredictOne(n *RTNode, x []float64) float64 {
    for !n.IsLeaf {
        if x[n.Feature] <= n.Threshold {
            n = n.Left
        } else {
            n = n.Right
        }
    }
    return n.Value
}

func (bt *BoostedTrees) score(x []float64, ci int) float64 {
    f := bt.InitScore[ci]
    for _, t := range bt.Trees[ci] {
        f += bt.LearningRate * regPredictOne(t, x)
    }
    return f
}

func (bt *BoostedTrees) PredictProba(X [][]float64) [][]float64 {
    k := len(bt.ClassSet)
    out := make([][]float64, len(X))
    for i := range X {
        row := make([]float64, k)
        sum := 0.0
        for ci := 0; ci < k; ci++ {
            row[ci] = sigmoid(bt.score(X[i], ci))
            sum += row[ci]
        }
        if sum == 0 {
            row = uniformDist(k)
        } else {
            for ci := range row {
                row[ci] /= sum
            }
        }
        out[i] = row
    }
    return out
}

func (bt *BoostedTrees) Predict(X [][]float64) []int {
    ps := bt.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps {
        out[i] = bt.ClassSet[argmax(ps[i])]
    }
    return out
}

// Contributions attributes the change in node value along each tree's
// decision path to the split features, per one-vs-rest score.
func (bt *BoostedTrees) Contributions(x []float64) [][]float64 {
    k := len(bt.ClassSet)
    out := make([][]float64, k)
    for ci := 0; ci < k; ci++ {
        out[ci] = make([]float64, len(x))
        for _, root := range bt.Trees[ci] {
            n := root
            for !n.IsLeaf {
                var child *RTNode
                if x[n.Feature] <= n.Threshold {
                    child = n.Left
                } else {
                    child = n.Right
                }
                out[ci][n.Feature] += bt.LearningRate * (child.Value - n.Value)
                n = child
            }
        }
    }
    return out
}

func meanAt(r []float64, idx []int) float64 {
    if len(idx) == 0 {
        return 0
    }
    s := 0.0
    for _, i := range idx {
        s += r[i]
    }
    return s / float64(len(idx))
}

func quantileThresholdsAt(X [][]float64, idx []int, j, nCand int) []float64 {
    sub := make([][]float64, len(idx))
    for i, id := range idx {
        sub[i] = X[id]
    }
    return quantileThresholds(sub, j, nCand)
}
