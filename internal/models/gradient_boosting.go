package models

import (
    "math"
    "sort"
)

type GBStump struct {
    Feature   int
    Threshold float64
    LeftVal   float64
    RightVal  float64
    // Base is the count-weighted mean of the two leaf values over the
    // training rows, the stump's expected output.
    Base float64
}

// GradientBoosting is boosted depth-1 stumps fit one-vs-rest per class.
// The per-class scores pass through a sigmoid and are normalized to a
// probability row.
type GradientBoosting struct {
    NEstimators        int
    LearningRate       float64
    MinSamples         int
    MaxThresholdsPerFe int
    Seed               int64
    ClassSet           []int
    InitScore          []float64
    Stumps             [][]GBStump
}

func NewGradientBoosting() *GradientBoosting {
    return &GradientBoosting{NEstimators: 100, LearningRate: 0.1, MinSamples: 1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func (gb *GradientBoosting) Classes() []int { return gb.ClassSet }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(X [][]float64, y []int) error {
    n := len(X)
    if n == 0 {
        return nil
    }
    gb.ClassSet = sortedUnique(y)
    k := len(gb.ClassSet)
    gb.InitScore = make([]float64, k)
    gb.Stumps = make([][]GBStump, k)
    for ci, cls := range gb.ClassSet {
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
        gb.InitScore[ci] = math.Log(base / (1.0 - base))
        gb.Stumps[ci] = gb.fitBinary(X, yb, gb.InitScore[ci])
    }
    return nil
}

func (gb *GradientBoosting) fitBinary(X [][]float64, y []int, init float64) []GBStump {
    n := len(X)
    F := make([]float64, n)
    for i := 0; i < n; i++ {
        F[i] = init
    }
    stumps := make([]GBStump, 0, gb.NEstimators)
    for m := 0; m < gb.NEstimators; m++ {
        r := make([]float64, n)
        for i := 0; i < n; i++ {
            r[i] = float64(y[i]) - sigmoid(F[i])
        }

        best := GBStump{Feature: -1}
        bestSSE := math.MaxFloat64
        nFeats := len(X[0])
        for j := 0; j < nFeats; j++ {
            cands := quantileThresholds(X, j, gb.MaxThresholdsPerFe)
            for _, thr := range cands {
                leftSum, leftCount := 0.0, 0.0
                rightSum, rightCount := 0.0, 0.0
                for i := 0; i < n; i++ {
                    if X[i][j] <= thr {
                        leftSum += r[i]
                        leftCount++
                    } else {
                        rightSum += r[i]
                        rightCount++
                    }
                }
                if int(leftCount) < gb.MinSamples || int(rightCount) < gb.MinSamples {
                    continue
                }
                if leftCount == 0 || rightCount == 0 {
                    continue
                }
                leftAvg := leftSum / leftCount
                rightAvg := rightSum / rightCount

                leftSS, rightSS := 0.0, 0.0
                for i := 0; i < n; i++ {
                    if X[i][j] <= thr {
                        d := r[i] - leftAvg
                        leftSS += d * d
                    } else {
                        d := r[i] - rightAvg
                        rightSS += d * d
                    }
                }
                sse := leftSS + rightSS
                if sse < bestSSE {
                    bestSSE = sse
                    best.Feature = j
                    best.Threshold = thr
                    best.LeftVal = leftAvg
                    best.RightVal = rightAvg
                    best.Base = (leftAvg*leftCount + rightAvg*rightCount) / float64(n)
                }
            }
        }
        if best.Feature == -1 {
            break
        }
        stumps = append(stumps, best)
        for i := 0; i < n; i++ {
            inc := best.LeftVal
            if X[i][best.Feature] > best.Threshold {
                inc = best.RightVal
            }
            F[i] += gb.LearningRate * inc
        }
    }
    return stumps
}

func (gb *GradientBoosting) score(x []float64, ci int) float64 {
    f := gb.InitScore[ci]
    for _, t := range gb.Stumps[ci] {
        inc := t.LeftVal
        if x[t.Feature] > t.Threshold {
            inc = t.RightVal
        }
        f += gb.LearningRate * inc
    }
    return f
}

func (gb *GradientBoosting) PredictProba(X [][]float64) [][]float64 {
    k := len(gb.ClassSet)
    out := make([][]float64, len(X))
    for i := range X {
        row := make([]float64, k)
        sum := 0.0
        for ci := 0; ci < k; ci++ {
            row[ci] = sigmoid(gb.score(X[i], ci))
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

func (gb *GradientBoosting) Predict(X [][]float64) []int {
    ps := gb.PredictProba(X)
    out := make([]int, len(ps))
    for i := range ps {
        out[i] = gb.ClassSet[argmax(ps[i])]
    }
    return out
}

// Contributions credits each stump's deviation from its expected output to
// the split feature, per one-vs-rest score.
func (gb *GradientBoosting) Contributions(x []float64) [][]float64 {
    k := len(gb.ClassSet)
    out := make([][]float64, k)
    for ci := 0; ci < k; ci++ {
        out[ci] = make([]float64, len(x))
        for _, t := range gb.Stumps[ci] {
            v := t.LeftVal
            if x[t.Feature] > t.Threshold {
                v = t.RightVal
            }
            out[ci][t.Feature] += gb.LearningRate * (v - t.Base)
        }
    }
    return out
}

func quantileThresholds(X [][]float64, j int, nCand int) []float64 {
    if nCand <= 0 {
        nCand = 16
    }
    n := len(X)
    vals := make([]float64, n)
    for i := 0; i < n; i++ {
        vals[i] = X[i][j]
    }
    sort.Float64s(vals)
    out := make([]float64, 0, nCand)
    for k := 1; k < nCand; k++ {
        idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
        if idx <= 0 || idx >= n {
            continue
        }
        thr := vals[idx]
        if len(out) == 0 || thr != out[len(out)-1] {
            out = append(out, thr)
        }
    }
    if len(out) == 0 {
        sum := 0.0
        for i := 0; i < n; i++ {
            sum += vals[i]
        }
        out = append(out, sum/float64(n))
    }
    return out
}
