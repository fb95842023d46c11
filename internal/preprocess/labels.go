package preprocess

// LabelEncoder maps target labels to integer codes by first appearance.
// Models report their learned class ordering in code space; Decode brings it
// back to the label strings the user selected from.
type LabelEncoder struct {
    Classes []string
    Index   map[string]int
}

func FitLabels(values []string) *LabelEncoder {
    enc := &LabelEncoder{Index: map[string]int{}}
    for _, v := range values {
        if _, ok := enc.Index[v]; !ok {
            enc.Index[v] = len(enc.Classes)
            enc.Classes = append(enc.Classes, v)
        }
    }
    return enc
}

func (e *LabelEncoder) Encode(values []string) []int {
    out := make([]int, len(values))
    for i, v := range values {
        if c, ok := e.Index[v]; ok {
            out[i] = c
        } else {
            out[i] = -1
        }
    }
    return out
}

func (e *LabelEncoder) Code(label string) (int, bool) {
    c, ok := e.Index[label]
    return c, ok
}

func (e *LabelEncoder) Decode(code int) string {
    if code < 0 || code >= len(e.Classes) {
        return "?"
    }
    return e.Classes[code]
}
