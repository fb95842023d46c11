package main

import (
    "encoding/csv"
    "encoding/gob"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "strconv"

    "gonum.org/v1/plot"

    "mlboard/internal/dataset"
    "mlboard/internal/interpret"
    "mlboard/internal/models"
    "mlboard/internal/preprocess"
    "mlboard/internal/render"
    "mlboard/internal/split"
)

func main() {
    data := flag.String("data", "data/exits.csv", "Input CSV path")
    target := flag.String("target", "", "Target column (default: last column)")
    modelPath := flag.String("model", "", "Trained model gob path (default models/<algo>_model.gob)")
    algo := flag.String("algo", "rf", "Model family the gob holds: gb|bt|rf")
    framework := flag.String("framework", "permutation", "Interpretation framework: permutation|pdp|attribution")
    feature := flag.String("feature", "", "Feature to plot (pdp)")
    class := flag.String("class", "", "Target class to plot (pdp)")
    useVal := flag.Bool("val", false, "Interpret on the validation split instead of test")
    seed := flag.Int64("seed", 0, "Seed used when the model was trained")
    topK := flag.Int("topk", 10, "Ranking length")
    iterations := flag.Int("iterations", 1, "Permutation repeats per feature")
    outImg := flag.String("out_img", "cmd/dashboard/static/interpretation.png", "Output PNG")
    outCsv := flag.String("out_csv", "data/interpretation.csv", "Output CSV")
    flag.Parse()

    f, err := os.Open(*data)
    if err != nil { fmt.Println("Failed to open CSV:", err); return }
    features, targetVals, _, err := dataset.Ingest(f, *target)
    f.Close()
    if err != nil { fmt.Println("Failed to ingest CSV:", err); return }

    sp, err := split.New(len(features.Rows), *seed)
    if err != nil { fmt.Println("Failed to split:", err); return }
    labels := preprocess.FitLabels(targetVals)
    y := labels.Encode(targetVals)
    transform, err := preprocess.Fit(features.Select(sp.Train))
    if err != nil { fmt.Println("Failed to fit preprocessor:", err); return }

    idx := sp.Test
    if *useVal { idx = sp.Val }
    X, err := transform.Apply(features.Select(idx))
    if err != nil { fmt.Println("Failed to encode split:", err); return }
    ySplit := split.GatherInts(y, idx)

    mdl, err := loadModel(*algo, *modelPath)
    if err != nil { fmt.Println("Failed to load model:", err); return }

    fw, err := interpret.FrameworkFromString(*framework)
    if err != nil { fmt.Println(err); return }
    artifact, err := interpret.Run(mdl, X, ySplit, transform.FeatureNames(), labels, interpret.Request{
        Framework:  fw,
        Feature:    *feature,
        Class:      *class,
        TopK:       *topK,
        Iterations: *iterations,
        Seed:       *seed,
    })
    if err != nil { fmt.Println("Interpretation failed:", err); return }

    if err := writeArtifactCSV(*outCsv, artifact); err != nil {
        fmt.Println("Failed to save CSV:", err)
    } else {
        fmt.Println("Artifact saved to:", *outCsv)
    }

    var p *plot.Plot
    switch artifact.Framework {
    case interpret.Permutation:
        p, err = render.BarRanking("Permutation Importances ("+mdl.Name()+")", artifact.Permutation.Weights)
    case interpret.PartialDependence:
        p, err = render.DependenceCurve(artifact.Curve)
    case interpret.Attribution:
        p, err = render.BarRanking("Attribution Ranking ("+mdl.Name()+")", artifact.Attribution)
    }
    if err != nil { fmt.Println("Failed to build plot:", err); return }
    if err := os.MkdirAll(filepath.Dir(*outImg), 0o755); err != nil { fmt.Println(err); return }
    if err := render.SavePNG(p, *outImg); err != nil {
        fmt.Println("Failed to save PNG:", err)
    } else {
        fmt.Println("Plot saved to:", *outImg)
    }
}

func loadModel(algo, path string) (models.Model, error) {
    if path == "" { path = filepath.Join("models", algo+"_model.gob") }
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()
    dec := gob.NewDecoder(f)
    switch algo {
    case "gb":
        var gb models.GradientBoosting
        if err := dec.Decode(&gb); err != nil { return nil, err }
        return &gb, nil
    case "bt":
        var bt models.BoostedTrees
        if err := dec.Decode(&bt); err != nil { return nil, err }
        return &bt, nil
    case "rf":
        var rf models.RandomForest
        if err := dec.Decode(&rf); err != nil { return nil, err }
        return &rf, nil
    }
    return nil, &models.UnsupportedModelError{Kind: algo}
}

func writeArtifactCSV(path string, artifact *interpret.Artifact) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()

    switch artifact.Framework {
    case interpret.Permutation:
        if err := w.Write([]string{"ranking", "feature", "weight", "std"}); err != nil { return err }
        for _, r := range artifact.Permutation.Weights {
            if err := w.Write([]string{"weights", r.Feature, ftoa(r.Weight), ftoa(r.Std)}); err != nil { return err }
        }
        for _, r := range artifact.Permutation.Importances {
            if err := w.Write([]string{"importances", r.Feature, ftoa(r.Weight), ftoa(r.Std)}); err != nil { return err }
        }
    case interpret.PartialDependence:
        if err := w.Write([]string{"grid", "value"}); err != nil { return err }
        for i := range artifact.Curve.Grid {
            if err := w.Write([]string{ftoa(artifact.Curve.Grid[i]), ftoa(artifact.Curve.Values[i])}); err != nil { return err }
        }
    case interpret.Attribution:
        if err := w.Write([]string{"feature", "weight"}); err != nil { return err }
        for _, r := range artifact.Attribution {
            if err := w.Write([]string{r.Feature, ftoa(r.Weight)}); err != nil { return err }
        }
    }
    return nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
