package preprocess

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "mlboard/internal/dataset"
)

func trainTable() *dataset.Table {
    return &dataset.Table{
        Columns: []string{"income", "household_type"},
        Rows: [][]string{
            {"1000", "family"},
            {"", "single"},
            {"3000", "family"},
            {"2000", "couple"},
        },
    }
}

func TestFitNumericMeanImputation(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)

    assert.True(t, tr.Numeric[0])
    assert.False(t, tr.Numeric[1])
    assert.InDelta(t, 2000.0, tr.Fill[0], 1e-9)

    X, err := tr.Apply(trainTable())
    require.NoError(t, err)
    assert.InDelta(t, 2000.0, X[1][0], 1e-9, "missing numeric cell gets the train mean")
}

func TestFitCategoricalCodesByFirstAppearance(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)

    assert.Equal(t, 0.0, tr.Codes[1]["family"])
    assert.Equal(t, 1.0, tr.Codes[1]["single"])
    assert.Equal(t, 2.0, tr.Codes[1]["couple"])
    assert.InDelta(t, 1.0, tr.Fill[1], 1e-9, "fill is the mean code")
}

func TestApplyIsIdempotent(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)

    other := &dataset.Table{
        Columns: []string{"income", "household_type"},
        Rows: [][]string{
            {"1500", "single"},
            {"NaN", "unseen kind"},
        },
    }
    a, err := tr.Apply(other)
    require.NoError(t, err)
    b, err := tr.Apply(other)
    require.NoError(t, err)
    assert.Equal(t, a, b)

    // Unseen categorical values and missing numerics both land on Fill.
    assert.InDelta(t, tr.Fill[0], a[1][0], 1e-9)
    assert.InDelta(t, tr.Fill[1], a[1][1], 1e-9)
}

func TestApplyDoesNotRefit(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)
    before := len(tr.Codes[1])

    _, err = tr.Apply(&dataset.Table{
        Columns: []string{"income", "household_type"},
        Rows:    [][]string{{"9", "brand new"}},
    })
    require.NoError(t, err)
    assert.Equal(t, before, len(tr.Codes[1]))
}

func TestApplyColumnMismatch(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)
    _, err = tr.Apply(&dataset.Table{Columns: []string{"income"}, Rows: [][]string{{"1"}}})
    assert.Error(t, err)
}

func TestFitEmptyTrain(t *testing.T) {
    _, err := Fit(nil)
    assert.Error(t, err)
    _, err = Fit(&dataset.Table{Columns: []string{"a"}})
    assert.Error(t, err)
}

func TestFeatureIndexMatchesNames(t *testing.T) {
    tr, err := Fit(trainTable())
    require.NoError(t, err)

    names := tr.FeatureNames()
    assert.Equal(t, []string{"income", "household_type"}, names)
    for j, name := range names {
        idx, ok := tr.FeatureIndex(name)
        require.True(t, ok)
        assert.Equal(t, j, idx)
    }
    _, ok := tr.FeatureIndex("nope")
    assert.False(t, ok)
}

func TestLabelEncoderRoundTrip(t *testing.T) {
    enc := FitLabels([]string{"Temporary Exit", "Permanent Exit", "Temporary Exit", "Unknown/Other"})

    assert.Equal(t, []string{"Temporary Exit", "Permanent Exit", "Unknown/Other"}, enc.Classes)
    assert.Equal(t, []int{0, 1, 0, 2}, enc.Encode([]string{"Temporary Exit", "Permanent Exit", "Temporary Exit", "Unknown/Other"}))

    code, ok := enc.Code("Permanent Exit")
    require.True(t, ok)
    assert.Equal(t, 1, code)
    assert.Equal(t, "Permanent Exit", enc.Decode(code))

    _, ok = enc.Code("never seen")
    assert.False(t, ok)
    assert.Equal(t, []int{-1}, enc.Encode([]string{"never seen"}))
    assert.Equal(t, "?", enc.Decode(-1))
}
