package session

import (
    "fmt"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "mlboard/internal/interpret"
    "mlboard/internal/models"
)

var exitClasses = []string{
    "Permanent Exit",
    "Temporary Exit",
    "Emergency Shelter",
    "Transitional Housing",
    "Unknown/Other",
}

// exitsCSV builds a 5-class table whose income column separates the classes.
func exitsCSV(n int) string {
    var b strings.Builder
    b.WriteString("age,income,household_type,exit_status\n")
    households := []string{"single", "family", "couple"}
    for i := 0; i < n; i++ {
        cls := i % 5
        fmt.Fprintf(&b, "%d,%d,%s,%s\n",
            20+i%50,
            500*(cls+1)+i%40,
            households[i%3],
            exitClasses[cls],
        )
    }
    return b.String()
}

func newSession(t *testing.T) *Session {
    t.Helper()
    return NewManager(zap.NewNop()).Create()
}

func upload(t *testing.T, s *Session) {
    t.Helper()
    require.NoError(t, s.Upload(strings.NewReader(exitsCSV(300)), "", 0))
}

func TestEvalSplitFromString(t *testing.T) {
    for s, want := range map[string]EvalSplit{
        "":           EvalTest,
        "test":       EvalTest,
        "val":        EvalValidation,
        "validation": EvalValidation,
    } {
        got, err := EvalSplitFromString(s)
        require.NoError(t, err, s)
        assert.Equal(t, want, got, s)
    }
    _, err := EvalSplitFromString("train")
    assert.Error(t, err)
}

func TestManagerLifecycle(t *testing.T) {
    m := NewManager(zap.NewNop())
    s := m.Create()
    assert.NotEmpty(t, s.ID)

    got, ok := m.Get(s.ID)
    require.True(t, ok)
    assert.Same(t, s, got)

    m.Delete(s.ID)
    _, ok = m.Get(s.ID)
    assert.False(t, ok)
}

func TestOperationsBeforeUpload(t *testing.T) {
    s := newSession(t)

    _, _, err := s.Train(models.KindRandomForest)
    assert.ErrorIs(t, err, ErrNoDataset)
    _, _, _, err = s.Evaluate(EvalTest)
    assert.ErrorIs(t, err, ErrNoModel)
    _, err = s.Interpret(EvalTest, interpret.Request{})
    assert.ErrorIs(t, err, ErrNoModel)
    _, _, err = s.Preview(5)
    assert.ErrorIs(t, err, ErrNoDataset)
    _, err = s.FeatureNames()
    assert.ErrorIs(t, err, ErrNoDataset)
    _, err = s.ClassValues()
    assert.ErrorIs(t, err, ErrNoDataset)
}

func TestUploadPreviewAndSelectors(t *testing.T) {
    s := newSession(t)
    upload(t, s)

    columns, head, err := s.Preview(5)
    require.NoError(t, err)
    assert.Equal(t, []string{"age", "income", "household_type", "exit_status"}, columns)
    assert.Len(t, head, 5)

    features, err := s.FeatureNames()
    require.NoError(t, err)
    assert.Equal(t, []string{"age", "income", "household_type"}, features)

    classes, err := s.ClassValues()
    require.NoError(t, err)
    assert.ElementsMatch(t, exitClasses, classes)
}

func TestTrainAndEvaluateFiveClasses(t *testing.T) {
    s := newSession(t)
    upload(t, s)

    testAcc, valAcc, err := s.Train(models.KindRandomForest)
    require.NoError(t, err)
    assert.GreaterOrEqual(t, testAcc, 0.0)
    assert.LessOrEqual(t, testAcc, 1.0)

    cachedTest, cachedVal, err := s.Accuracies()
    require.NoError(t, err)
    assert.Equal(t, testAcc, cachedTest)
    assert.Equal(t, valAcc, cachedVal)

    name, err := s.ModelName()
    require.NoError(t, err)
    assert.Equal(t, "RandomForest", name)

    rep, cm, classLabels, err := s.Evaluate(EvalTest)
    require.NoError(t, err)
    require.Len(t, rep.PerClass, 5)
    assert.ElementsMatch(t, exitClasses, classLabels)

    require.Len(t, cm, 5)
    for ri, row := range cm {
        require.Len(t, row, 5)
        sum := 0.0
        for _, v := range row {
            sum += v
        }
        assert.InDelta(t, 1.0, sum, 1e-9, "confusion row %d", ri)
    }

    // Validation split evaluates independently.
    _, _, _, err = s.Evaluate(EvalValidation)
    require.NoError(t, err)
}

func TestTrainEachFamily(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    for _, kind := range []models.Kind{models.KindGradientBoosting, models.KindBoostedTrees, models.KindRandomForest} {
        _, _, err := s.Train(kind)
        require.NoError(t, err, kind.String())
    }
}

func TestInterpretPartialDependence(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    _, _, err := s.Train(models.KindRandomForest)
    require.NoError(t, err)

    classes, err := s.ClassValues()
    require.NoError(t, err)

    art, err := s.Interpret(EvalTest, interpret.Request{
        Framework: interpret.PartialDependence,
        Feature:   "income",
        Class:     classes[2],
    })
    require.NoError(t, err)
    require.NotNil(t, art.Curve)
    assert.Equal(t, "income", art.Curve.Feature)
    assert.Equal(t, classes[2], art.Curve.Class)
    assert.NotEmpty(t, art.Curve.Grid)
}

func TestInterpretUnknownFeature(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    _, _, err := s.Train(models.KindRandomForest)
    require.NoError(t, err)

    _, err = s.Interpret(EvalTest, interpret.Request{
        Framework: interpret.PartialDependence,
        Feature:   "zip_code",
        Class:     exitClasses[0],
    })
    var unknown *interpret.UnknownFeatureError
    assert.ErrorAs(t, err, &unknown)
}

func TestInterpretPermutationAndAttribution(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    _, _, err := s.Train(models.KindBoostedTrees)
    require.NoError(t, err)

    art, err := s.Interpret(EvalTest, interpret.Request{Framework: interpret.Permutation})
    require.NoError(t, err)
    require.NotNil(t, art.Permutation)
    assert.NotEmpty(t, art.Permutation.Weights)
    assert.NotEmpty(t, art.Permutation.Importances)

    art, err = s.Interpret(EvalValidation, interpret.Request{Framework: interpret.Attribution})
    require.NoError(t, err)
    assert.NotEmpty(t, art.Attribution)
}

func TestUploadDropsModel(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    _, _, err := s.Train(models.KindRandomForest)
    require.NoError(t, err)

    upload(t, s)
    _, _, _, err = s.Evaluate(EvalTest)
    assert.ErrorIs(t, err, ErrNoModel)
}

func TestUploadFailureKeepsState(t *testing.T) {
    s := newSession(t)
    upload(t, s)
    _, _, err := s.Train(models.KindRandomForest)
    require.NoError(t, err)

    // A malformed upload leaves the previous dataset and model untouched.
    err = s.Upload(strings.NewReader(""), "", 0)
    require.Error(t, err)

    name, err := s.ModelName()
    require.NoError(t, err)
    assert.Equal(t, "RandomForest", name)
}

func TestSessionsAreIsolated(t *testing.T) {
    m := NewManager(zap.NewNop())
    a := m.Create()
    b := m.Create()
    require.NotEqual(t, a.ID, b.ID)

    require.NoError(t, a.Upload(strings.NewReader(exitsCSV(300)), "", 0))
    _, err := b.FeatureNames()
    assert.ErrorIs(t, err, ErrNoDataset)
}

func TestBusySessionRejectsCalls(t *testing.T) {
    s := newSession(t)
    upload(t, s)

    s.mu.Lock()
    _, _, err := s.Preview(1)
    assert.ErrorIs(t, err, ErrBusy)
    _, _, err = s.Train(models.KindRandomForest)
    assert.ErrorIs(t, err, ErrBusy)
    _, err = s.Interpret(EvalTest, interpret.Request{})
    assert.ErrorIs(t, err, ErrBusy)
    s.mu.Unlock()

    _, _, err = s.Preview(1)
    require.NoError(t, err)
}
