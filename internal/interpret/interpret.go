// Package interpret produces diagnostic artifacts for a trained classifier:
// permutation-importance rankings, partial-dependence curves and global
// attribution rankings. It only ever reads the model, and every computation
// is seeded, so the same request yields the same artifact.
package interpret

import (
    "errors"
    "fmt"

    "mlboard/internal/models"
    "mlboard/internal/preprocess"
)

type Framework int

const (
    Permutation Framework = iota
    PartialDependence
    Attribution
)

func (f Framework) String() string {
    switch f {
    case Permutation:
        return "permutation"
    case PartialDependence:
        return "pdp"
    case Attribution:
        return "attribution"
    }
    return "unknown"
}

func FrameworkFromString(s string) (Framework, error) {
    switch s {
    case "permutation":
        return Permutation, nil
    case "pdp", "partial-dependence":
        return PartialDependence, nil
    case "attribution":
        return Attribution, nil
    }
    return 0, fmt.Errorf("unknown interpretation framework: %s", s)
}

type UnknownFeatureError struct {
    Feature string
}

func (e *UnknownFeatureError) Error() string { return "unknown feature: " + e.Feature }

type UnknownClassError struct {
    Class string
}

func (e *UnknownClassError) Error() string { return "unknown class: " + e.Class }

// ErrLocalAttribution marks the per-instance attribution view, an open
// extension point with no defined behavior yet.
var ErrLocalAttribution = errors.New("local attribution view is not implemented")

// RankedFeature is one entry of an importance or attribution ranking.
type RankedFeature struct {
    Feature string  `json:"feature"`
    Index   int     `json:"index"`
    Weight  float64 `json:"weight"`
    Std     float64 `json:"std"`
}

// PermutationArtifact carries the two independently derived rankings over the
// same inputs. Rendering both is intentional cross-validation of the
// importance signal.
type PermutationArtifact struct {
    Weights     []RankedFeature `json:"weights"`
    Importances []RankedFeature `json:"importances"`
}

type Curve struct {
    Feature string    `json:"feature"`
    Class   string    `json:"class"`
    Grid    []float64 `json:"grid"`
    Values  []float64 `json:"values"`
}

type Request struct {
    Framework  Framework
    Feature    string
    Class      string
    TopK       int
    Iterations int
    Seed       int64
}

type Artifact struct {
    Framework   Framework            `json:"framework"`
    Permutation *PermutationArtifact `json:"permutation,omitempty"`
    Curve       *Curve               `json:"curve,omitempty"`
    Attribution []RankedFeature      `json:"attribution,omitempty"`
}

// Run produces exactly one artifact bundle for the selected framework.
func Run(m models.Model, X [][]float64, y []int, names []string, labels *preprocess.LabelEncoder, req Request) (*Artifact, error) {
    if req.TopK <= 0 {
        req.TopK = 10
    }
    if req.Iterations <= 0 {
        req.Iterations = 1
    }
    switch req.Framework {
    case Permutation:
        opt := PermutationOptions{TopK: req.TopK, Iterations: req.Iterations, Seed: req.Seed}
        return &Artifact{
            Framework: Permutation,
            Permutation: &PermutationArtifact{
                Weights:     PermutationWeights(m, X, y, names, opt),
                Importances: PermutationImportance(m, X, y, names, opt),
            },
        }, nil
    case PartialDependence:
        curve, err := ComputePartialDependence(m, X, names, req.Feature, req.Class, labels)
        if err != nil {
            return nil, err
        }
        return &Artifact{Framework: PartialDependence, Curve: curve}, nil
    case Attribution:
        ranked, err := GlobalAttribution(m, X, names, req.TopK)
        if err != nil {
            return nil, err
        }
        return &Artifact{Framework: Attribution, Attribution: ranked}, nil
    }
    return nil, fmt.Errorf("unknown interpretation framework: %d", req.Framework)
}
