package split

import (
    "math/rand"
    "strconv"
)

// Split is an immutable 60/20/20 partition of row indices. It is produced by
// two sequential holdout splits (80/20, then 75/25 of the remainder), each
// drawing from a rand source seeded the same way, so the partition is fully
// determined by (n, seed).
type Split struct {
    Train []int
    Val   []int
    Test  []int
}

type InsufficientDataError struct {
    Rows int
}

func (e *InsufficientDataError) Error() string {
    return "insufficient data: " + strconv.Itoa(e.Rows) + " rows cannot fill train/validation/test"
}

// New partitions n row indices. Fails when any of the three subsets would be
// empty.
func New(n int, seed int64) (*Split, error) {
    nTest := int(0.2 * float64(n))
    rest := n - nTest
    nVal := int(0.25 * float64(rest))
    nTrain := rest - nVal
    if nTest == 0 || nVal == 0 || nTrain == 0 {
        return nil, &InsufficientDataError{Rows: n}
    }

    rng := rand.New(rand.NewSource(seed))
    perm := rng.Perm(n)
    test := append([]int(nil), perm[:nTest]...)
    remainder := perm[nTest:]

    rng = rand.New(rand.NewSource(seed))
    inner := rng.Perm(len(remainder))
    val := make([]int, 0, nVal)
    train := make([]int, 0, nTrain)
    for i, j := range inner {
        if i < nVal {
            val = append(val, remainder[j])
        } else {
            train = append(train, remainder[j])
        }
    }
    return &Split{Train: train, Val: val, Test: test}, nil
}

// GatherRows selects rows at the given indices.
func GatherRows(rows [][]string, idx []int) [][]string {
    out := make([][]string, len(idx))
    for i, j := range idx {
        out[i] = rows[j]
    }
    return out
}

// GatherInts selects values at the given indices.
func GatherInts(values []int, idx []int) []int {
    out := make([]int, len(idx))
    for i, j := range idx {
        out[i] = values[j]
    }
    return out
}

// GatherStrings selects values at the given indices.
func GatherStrings(values []string, idx []int) []string {
    out := make([]string, len(idx))
    for i, j := range idx {
        out[i] = values[j]
    }
    return out
}
