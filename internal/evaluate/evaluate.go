package evaluate

import (
    "gonum.org/v1/gonum/stat"

    "mlboard/internal/models"
)

// ClassMetrics is one row of the classification report. Class is the model's
// class code; the caller decodes it to a label for display.
type ClassMetrics struct {
    Class     int     `json:"class"`
    Precision float64 `json:"precision"`
    Recall    float64 `json:"recall"`
    F1        float64 `json:"f1"`
    Support   int     `json:"support"`
}

type Report struct {
    Accuracy float64        `json:"accuracy"`
    MacroF1  float64        `json:"macro_f1"`
    PerClass []ClassMetrics `json:"per_class"`
}

// Evaluate computes predictions, the per-class report and the row-normalized
// confusion matrix on a chosen split. Class order everywhere follows the
// model's learned class ordering.
func Evaluate(m models.Model, X [][]float64, y []int) ([]int, *Report, [][]float64) {
    preds := m.Predict(X)
    classes := m.Classes()
    return preds, BuildReport(y, preds, classes), ConfusionMatrix(y, preds, classes)
}

func BuildReport(y, preds []int, classes []int) *Report {
    rep := &Report{Accuracy: Accuracy(y, preds)}
    f1s := make([]float64, 0, len(classes))
    for _, cls := range classes {
        tp, fp, fn, support := 0, 0, 0, 0
        for i := range y {
            if y[i] == cls {
                support++
            }
            if preds[i] == cls && y[i] == cls {
                tp++
            }
            if preds[i] == cls && y[i] != cls {
                fp++
            }
            if preds[i] != cls && y[i] == cls {
                fn++
            }
        }
        var prec, rec, f1 float64
        if tp+fp > 0 {
            prec = float64(tp) / float64(tp+fp)
        }
        if tp+fn > 0 {
            rec = float64(tp) / float64(tp+fn)
        }
        if prec+rec > 0 {
            f1 = 2 * prec * rec / (prec + rec)
        }
        f1s = append(f1s, f1)
        rep.PerClass = append(rep.PerClass, ClassMetrics{Class: cls, Precision: prec, Recall: rec, F1: f1, Support: support})
    }
    if len(f1s) > 0 {
        rep.MacroF1 = stat.Mean(f1s, nil)
    }
    return rep
}

func Accuracy(y, p []int) float64 {
    if len(y) == 0 {
        return 0
    }
    c := 0
    for i := range y {
        if y[i] == p[i] {
            c++
        }
    }
    return float64(c) / float64(len(y))
}

// MacroF1 is the unweighted mean of per-class F1 scores.
func MacroF1(y, p []int, classes []int) float64 {
    return BuildReport(y, p, classes).MacroF1
}

// ConfusionMatrix counts true class (row) against predicted class (column)
// and normalizes each row to sum to 1. Rows with no support stay zero.
func ConfusionMatrix(y, p []int, classes []int) [][]float64 {
    pos := map[int]int{}
    for i, c := range classes {
        pos[c] = i
    }
    k := len(classes)
    cm := make([][]float64, k)
    for i := range cm {
        cm[i] = make([]float64, k)
    }
    for i := range y {
        ri, ok1 := pos[y[i]]
        ci, ok2 := pos[p[i]]
        if ok1 && ok2 {
            cm[ri][ci]++
        }
    }
    for ri := range cm {
        sum := 0.0
        for ci := range cm[ri] {
            sum += cm[ri][ci]
        }
        if sum == 0 {
            continue
        }
        for ci := range cm[ri] {
            cm[ri][ci] /= sum
        }
    }
    return cm
}
