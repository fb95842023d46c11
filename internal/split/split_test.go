package split

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSplitIsDisjointAndExhaustive(t *testing.T) {
    n := 100
    sp, err := New(n, 0)
    require.NoError(t, err)

    seen := map[int]int{}
    for _, i := range sp.Train {
        seen[i]++
    }
    for _, i := range sp.Val {
        seen[i]++
    }
    for _, i := range sp.Test {
        seen[i]++
    }
    assert.Len(t, seen, n)
    for i, c := range seen {
        assert.Equal(t, 1, c, "index %d appears %d times", i, c)
    }
}

func TestSplitRatios(t *testing.T) {
    sp, err := New(1000, 3)
    require.NoError(t, err)

    assert.InDelta(t, 0.20, float64(len(sp.Test))/1000, 0.01)
    assert.InDelta(t, 0.20, float64(len(sp.Val))/1000, 0.01)
    assert.InDelta(t, 0.60, float64(len(sp.Train))/1000, 0.01)
}

func TestSplitDeterministicForSeed(t *testing.T) {
    a, err := New(250, 42)
    require.NoError(t, err)
    b, err := New(250, 42)
    require.NoError(t, err)
    assert.Equal(t, a, b)

    c, err := New(250, 43)
    require.NoError(t, err)
    assert.NotEqual(t, a.Test, c.Test)
}

func TestSplitInsufficientData(t *testing.T) {
    for _, n := range []int{0, 1, 2, 3, 4} {
        _, err := New(n, 0)
        var insufficient *InsufficientDataError
        require.ErrorAs(t, err, &insufficient, "n=%d", n)
    }

    sp, err := New(5, 0)
    require.NoError(t, err)
    assert.NotEmpty(t, sp.Train)
    assert.NotEmpty(t, sp.Val)
    assert.NotEmpty(t, sp.Test)
}

func TestGatherHelpers(t *testing.T) {
    rows := [][]string{{"a"}, {"b"}, {"c"}}
    assert.Equal(t, [][]string{{"c"}, {"a"}}, GatherRows(rows, []int{2, 0}))
    assert.Equal(t, []int{3, 1}, GatherInts([]int{1, 2, 3}, []int{2, 0}))
    assert.Equal(t, []string{"y", "x"}, GatherStrings([]string{"x", "y"}, []int{1, 0}))
}
