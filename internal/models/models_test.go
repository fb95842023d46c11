package models

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// blobs returns a 3-class separable matrix: two informative features and one
// constant column no tree should ever split on.
func blobs(n int) ([][]float64, []int) {
    X := make([][]float64, n)
    y := make([]int, n)
    for i := 0; i < n; i++ {
        cls := i % 3
        X[i] = []float64{
            float64(cls)*10 + float64(i%10)*0.1,
            float64(cls)*-5 + float64(i%7)*0.05,
            0,
        }
        y[i] = cls
    }
    return X, y
}

func TestKindFromString(t *testing.T) {
    cases := map[string]Kind{
        "gb":                KindGradientBoosting,
        "gradient-boosting": KindGradientBoosting,
        "bt":                KindBoostedTrees,
        "boosted-trees":     KindBoostedTrees,
        "rf":                KindRandomForest,
        "random-forest":     KindRandomForest,
    }
    for s, want := range cases {
        got, err := KindFromString(s)
        require.NoError(t, err, s)
        assert.Equal(t, want, got, s)
    }

    _, err := KindFromString("xgboost")
    var unsupported *UnsupportedModelError
    require.ErrorAs(t, err, &unsupported)
    assert.Equal(t, "xgboost", unsupported.Kind)
}

func TestTrainUnknownKind(t *testing.T) {
    X, y := blobs(30)
    _, err := Train(Kind(99), X, y, 0)
    var unsupported *UnsupportedModelError
    require.ErrorAs(t, err, &unsupported)
}

func TestTrainDeterministicForSeed(t *testing.T) {
    X, y := blobs(120)
    for _, kind := range []Kind{KindGradientBoosting, KindBoostedTrees, KindRandomForest} {
        a, err := Train(kind, X, y, 7)
        require.NoError(t, err, kind.String())
        b, err := Train(kind, X, y, 7)
        require.NoError(t, err, kind.String())
        assert.Equal(t, a.Predict(X), b.Predict(X), kind.String())
        assert.Equal(t, a.PredictProba(X), b.PredictProba(X), kind.String())
    }
}

func TestClassesSortedAscending(t *testing.T) {
    X, raw := blobs(120)
    // Remap codes so input order differs from sorted order.
    y := make([]int, len(raw))
    for i, v := range raw {
        y[i] = []int{4, 0, 2}[v]
    }
    for _, kind := range []Kind{KindGradientBoosting, KindBoostedTrees, KindRandomForest} {
        mdl, err := Train(kind, X, y, 0)
        require.NoError(t, err, kind.String())
        assert.Equal(t, []int{0, 2, 4}, mdl.Classes(), kind.String())
        for _, p := range mdl.Predict(X) {
            assert.Contains(t, []int{0, 2, 4}, p, kind.String())
        }
    }
}

func TestPredictProbaRowsSumToOne(t *testing.T) {
    X, y := blobs(120)
    for _, kind := range []Kind{KindGradientBoosting, KindBoostedTrees, KindRandomForest} {
        mdl, err := Train(kind, X, y, 1)
        require.NoError(t, err, kind.String())
        for _, row := range mdl.PredictProba(X) {
            require.Len(t, row, 3, kind.String())
            sum := 0.0
            for _, p := range row {
                assert.GreaterOrEqual(t, p, 0.0, kind.String())
                sum += p
            }
            assert.InDelta(t, 1.0, sum, 1e-9, kind.String())
        }
    }
}

func TestSeparableDataFitsWell(t *testing.T) {
    X, y := blobs(120)
    for _, kind := range []Kind{KindGradientBoosting, KindBoostedTrees, KindRandomForest} {
        mdl, err := Train(kind, X, y, 0)
        require.NoError(t, err, kind.String())
        pred := mdl.Predict(X)
        correct := 0
        for i := range y {
            if pred[i] == y[i] {
                correct++
            }
        }
        acc := float64(correct) / float64(len(y))
        assert.GreaterOrEqual(t, acc, 0.8, "%s train accuracy %.3f", kind.String(), acc)
    }
}

func TestContributionsShapeAndConstantFeature(t *testing.T) {
    X, y := blobs(120)
    for _, kind := range []Kind{KindGradientBoosting, KindBoostedTrees, KindRandomForest} {
        mdl, err := Train(kind, X, y, 0)
        require.NoError(t, err, kind.String())
        ex, ok := mdl.(Explainer)
        require.True(t, ok, kind.String())

        contrib := ex.Contributions(X[0])
        require.Len(t, contrib, 3, kind.String())
        for _, perClass := range contrib {
            require.Len(t, perClass, 3, kind.String())
            assert.Zero(t, perClass[2], "%s attributed weight to a constant feature", kind.String())
        }
    }
}

func TestDecisionTreeContributionsTelescope(t *testing.T) {
    X, y := blobs(90)
    dt := NewDecisionTree()
    require.NoError(t, dt.Fit(X, y))

    // Path deltas telescope: root dist plus summed contributions equals the
    // leaf dist the prediction is read from.
    proba := dt.PredictProba([][]float64{X[5]})[0]
    contrib := dt.Contributions(X[5])
    for c := range proba {
        got := dt.Root.Dist[c]
        for f := range contrib[c] {
            got += contrib[c][f]
        }
        assert.InDelta(t, proba[c], got, 1e-9)
    }
}

func TestRandomForestDifferentSeedsDiffer(t *testing.T) {
    X, y := blobs(120)
    a, err := Train(KindRandomForest, X, y, 1)
    require.NoError(t, err)
    b, err := Train(KindRandomForest, X, y, 2)
    require.NoError(t, err)
    assert.NotEqual(t, a.PredictProba(X), b.PredictProba(X))
}
