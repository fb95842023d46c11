package main

import (
    "encoding/csv"
    "encoding/gob"
    "flag"
    "fmt"
    "os"
    "path/filepath"
    "strconv"

    "go.uber.org/zap"
    "gonum.org/v1/plot"

    "mlboard/internal/dataset"
    "mlboard/internal/evaluate"
    "mlboard/internal/interpret"
    "mlboard/internal/models"
    "mlboard/internal/preprocess"
    "mlboard/internal/render"
    "mlboard/internal/split"
    "mlboard/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", false, "Regenerate the synthetic exits dataset")
    n := flag.Int("n", 5000, "Synthetic rows to generate")
    data := flag.String("data", "data/exits.csv", "Input CSV path")
    target := flag.String("target", "", "Target column (default: last column)")
    algo := flag.String("algo", "rf", "Model family: gb|bt|rf")
    seed := flag.Int64("seed", 0, "Seed for split and training")
    out := flag.String("out", "", "Model output path (default models/<algo>_model.gob)")
    rankImg := flag.String("rank_img", "cmd/dashboard/static/importances.png", "Permutation ranking PNG")
    rankCsv := flag.String("rank_csv", "data/importances.csv", "Permutation ranking CSV")
    flag.Parse()

    if *regen {
        logger.Info("Generating synthetic exits dataset", zap.Int("n", *n), zap.String("out", *data))
        if err := dataset.GenerateSyntheticExits(*n, *seed, *data); err != nil {
            logger.Fatal("Failed to generate dataset", zap.Error(err))
        }
    }

    f, err := os.Open(*data)
    if err != nil { logger.Fatal("Failed to open CSV", zap.Error(err)) }
    features, targetVals, _, err := dataset.Ingest(f, *target)
    f.Close()
    if err != nil { logger.Fatal("Failed to ingest CSV", zap.Error(err)) }

    sp, err := split.New(len(features.Rows), *seed)
    if err != nil { logger.Fatal("Failed to split dataset", zap.Error(err)) }

    labels := preprocess.FitLabels(targetVals)
    y := labels.Encode(targetVals)

    trainTab := features.Select(sp.Train)
    transform, err := preprocess.Fit(trainTab)
    if err != nil { logger.Fatal("Failed to fit preprocessor", zap.Error(err)) }
    xTrain, err := transform.Apply(trainTab)
    if err != nil { logger.Fatal("Failed to encode train split", zap.Error(err)) }
    xVal, err := transform.Apply(features.Select(sp.Val))
    if err != nil { logger.Fatal("Failed to encode validation split", zap.Error(err)) }
    xTest, err := transform.Apply(features.Select(sp.Test))
    if err != nil { logger.Fatal("Failed to encode test split", zap.Error(err)) }
    yTrain := split.GatherInts(y, sp.Train)
    yVal := split.GatherInts(y, sp.Val)
    yTest := split.GatherInts(y, sp.Test)

    kind, err := models.KindFromString(*algo)
    if err != nil { logger.Fatal("Unknown model family", zap.Error(err)) }
    mdl, err := models.Train(kind, xTrain, yTrain, *seed)
    if err != nil { logger.Fatal("Training failed", zap.Error(err)) }

    _, testRep, _ := evaluate.Evaluate(mdl, xTest, yTest)
    _, valRep, _ := evaluate.Evaluate(mdl, xVal, yVal)
    logger.Info("Holdout metrics",
        zap.String("model", mdl.Name()),
        zap.Float64("test_accuracy", testRep.Accuracy),
        zap.Float64("validation_accuracy", valRep.Accuracy),
        zap.Float64("test_macro_f1", testRep.MacroF1),
        zap.Int("classes", len(labels.Classes)),
    )
    for _, cmx := range testRep.PerClass {
        logger.Info("Class metrics",
            zap.String("class", labels.Decode(cmx.Class)),
            zap.Float64("precision", cmx.Precision),
            zap.Float64("recall", cmx.Recall),
            zap.Float64("f1", cmx.F1),
            zap.Int("support", cmx.Support),
        )
    }

    path := *out
    if path == "" { path = filepath.Join("models", kind.String()+"_model.gob") }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { logger.Fatal("mkdir models", zap.Error(err)) }
    mf, err := os.Create(path)
    if err != nil { logger.Fatal("create model file", zap.Error(err)) }
    defer mf.Close()
    enc := gob.NewEncoder(mf)
    if err := enc.Encode(mdl); err != nil { logger.Fatal("serialize model", zap.Error(err)) }
    logger.Info("Model saved", zap.String("path", path))
    fmt.Println("Model:", mdl.Name())

    opt := interpret.PermutationOptions{TopK: 10, Iterations: 1, Seed: *seed}
    ranked := interpret.PermutationWeights(mdl, xTest, yTest, transform.FeatureNames(), opt)
    if err := writeRankingCSV(*rankCsv, ranked); err != nil {
        logger.Warn("Failed to save ranking CSV", zap.Error(err))
    }
    if p, err := render.BarRanking("Permutation Importances ("+mdl.Name()+")", ranked); err != nil {
        logger.Warn("Failed to build ranking plot", zap.Error(err))
    } else if err := saveRankingPNG(p, *rankImg); err != nil {
        logger.Warn("Failed to save ranking PNG", zap.Error(err))
    } else {
        logger.Info("Permutation ranking generated", zap.String("png", *rankImg), zap.String("csv", *rankCsv))
    }
}

func writeRankingCSV(path string, ranked []interpret.RankedFeature) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"feature", "weight", "std"}); err != nil { return err }
    for _, r := range ranked {
        rec := []string{r.Feature, strconv.FormatFloat(r.Weight, 'f', 6, 64), strconv.FormatFloat(r.Std, 'f', 6, 64)}
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func saveRankingPNG(p *plot.Plot, path string) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    return render.SavePNG(p, path)
}
