// Package session owns the per-user pipeline state: dataset, split, fitted
// transform, trained model and evaluation artifacts. Sessions share nothing;
// there are no process-wide singletons. A failed recomputation never
// clobbers the last-good state.
package session

import (
    "errors"
    "io"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "mlboard/internal/dataset"
    "mlboard/internal/evaluate"
    "mlboard/internal/interpret"
    "mlboard/internal/models"
    "mlboard/internal/preprocess"
    "mlboard/internal/split"
)

type EvalSplit int

const (
    EvalTest EvalSplit = iota
    EvalValidation
)

func EvalSplitFromString(s string) (EvalSplit, error) {
    switch s {
    case "test", "":
        return EvalTest, nil
    case "validation", "val":
        return EvalValidation, nil
    }
    return 0, errors.New("unknown evaluation split: " + s)
}

var (
    // ErrBusy is surfaced while another request is in flight on the same
    // session; only one interpretation request runs at a time.
    ErrBusy      = errors.New("session is busy")
    ErrNoDataset = errors.New("no dataset uploaded")
    ErrNoModel   = errors.New("no trained model")
)

// state is one consistent snapshot of the pipeline. Mutating operations
// build a candidate and swap it in only on success.
type state struct {
    full         *dataset.Table
    features     *dataset.Table
    targetColumn string
    classValues  []string
    labels       *preprocess.LabelEncoder
    transform    *preprocess.Transform
    seed         int64

    xTrain, xVal, xTest [][]float64
    yTrain, yVal, yTest []int

    kind    models.Kind
    model   models.Model
    testAcc float64
    valAcc  float64
}

type Session struct {
    ID        string
    CreatedAt time.Time

    mu     sync.Mutex
    logger *zap.Logger
    st     state
}

// Upload ingests a delimited source, splits it 60/20/20 and fits the
// preprocessing transform on the training split only. A previously trained
// model is dropped: it belongs to the previous dataset.
func (s *Session) Upload(source io.Reader, targetColumn string, seed int64) error {
    if !s.mu.TryLock() {
        return ErrBusy
    }
    defer s.mu.Unlock()

    features, target, full, err := dataset.Ingest(source, targetColumn)
    if err != nil {
        return err
    }
    if targetColumn == "" {
        targetColumn = full.Columns[len(full.Columns)-1]
    }
    sp, err := split.New(len(features.Rows), seed)
    if err != nil {
        return err
    }
    labels := preprocess.FitLabels(target)
    yAll := labels.Encode(target)

    trainTab := features.Select(sp.Train)
    transform, err := preprocess.Fit(trainTab)
    if err != nil {
        return err
    }
    xTrain, err := transform.Apply(trainTab)
    if err != nil {
        return err
    }
    xVal, err := transform.Apply(features.Select(sp.Val))
    if err != nil {
        return err
    }
    xTest, err := transform.Apply(features.Select(sp.Test))
    if err != nil {
        return err
    }

    s.st = state{
        full:         full,
        features:     features,
        targetColumn: targetColumn,
        classValues:  dataset.DistinctValues(target),
        labels:       labels,
        transform:    transform,
        seed:         seed,
        xTrain:       xTrain,
        xVal:         xVal,
        xTest:        xTest,
        yTrain:       split.GatherInts(yAll, sp.Train),
        yVal:         split.GatherInts(yAll, sp.Val),
        yTest:        split.GatherInts(yAll, sp.Test),
    }
    s.logger.Info("dataset ingested",
        zap.String("session", s.ID),
        zap.String("target", targetColumn),
        zap.Int("rows", len(features.Rows)),
        zap.Int("features", len(features.Columns)),
        zap.Int("classes", len(labels.Classes)),
    )
    return nil
}

// Train fits the selected model family on the processed training split. On
// failure the previous model stays in place as the last-good fallback.
func (s *Session) Train(kind models.Kind) (testAcc, valAcc float64, err error) {
    if !s.mu.TryLock() {
        return 0, 0, ErrBusy
    }
    defer s.mu.Unlock()

    if s.st.transform == nil {
        return 0, 0, ErrNoDataset
    }
    mdl, err := models.Train(kind, s.st.xTrain, s.st.yTrain, s.st.seed)
    if err != nil {
        s.logger.Warn("training failed, keeping previous model",
            zap.String("session", s.ID), zap.String("kind", kind.String()), zap.Error(err))
        return 0, 0, err
    }
    s.st.kind = kind
    s.st.model = mdl
    s.st.testAcc = evaluate.Accuracy(s.st.yTest, mdl.Predict(s.st.xTest))
    s.st.valAcc = evaluate.Accuracy(s.st.yVal, mdl.Predict(s.st.xVal))
    s.logger.Info("model trained",
        zap.String("session", s.ID),
        zap.String("model", mdl.Name()),
        zap.Float64("test_acc", s.st.testAcc),
        zap.Float64("val_acc", s.st.valAcc),
    )
    return s.st.testAcc, s.st.valAcc, nil
}

// Evaluate returns the report, the row-normalized confusion matrix and the
// class labels in the model's learned ordering for the chosen split.
func (s *Session) Evaluate(es EvalSplit) (*evaluate.Report, [][]float64, []string, error) {
    if !s.mu.TryLock() {
        return nil, nil, nil, ErrBusy
    }
    defer s.mu.Unlock()

    if s.st.model == nil {
        return nil, nil, nil, ErrNoModel
    }
    X, y := s.st.xTest, s.st.yTest
    if es == EvalValidation {
        X, y = s.st.xVal, s.st.yVal
    }
    _, rep, cm := evaluate.Evaluate(s.st.model, X, y)
    classLabels := make([]string, 0, len(s.st.model.Classes()))
    for _, c := range s.st.model.Classes() {
        classLabels = append(classLabels, s.st.labels.Decode(c))
    }
    return rep, cm, classLabels, nil
}

// Interpret regenerates exactly one interpretation artifact over the chosen
// evaluation split.
func (s *Session) Interpret(es EvalSplit, req interpret.Request) (*interpret.Artifact, error) {
    if !s.mu.TryLock() {
        return nil, ErrBusy
    }
    defer s.mu.Unlock()

    if s.st.model == nil {
        return nil, ErrNoModel
    }
    X, y := s.st.xTest, s.st.yTest
    if es == EvalValidation {
        X, y = s.st.xVal, s.st.yVal
    }
    if req.Seed == 0 {
        req.Seed = s.st.seed
    }
    return interpret.Run(s.st.model, X, y, s.st.transform.FeatureNames(), s.st.labels, req)
}

// Preview returns the header and the first n raw rows of the uploaded table.
func (s *Session) Preview(n int) ([]string, [][]string, error) {
    if !s.mu.TryLock() {
        return nil, nil, ErrBusy
    }
    defer s.mu.Unlock()
    if s.st.full == nil {
        return nil, nil, ErrNoDataset
    }
    return s.st.full.Columns, s.st.full.Head(n), nil
}

// FeatureNames lists the processed feature columns, in matrix order.
func (s *Session) FeatureNames() ([]string, error) {
    if !s.mu.TryLock() {
        return nil, ErrBusy
    }
    defer s.mu.Unlock()
    if s.st.transform == nil {
        return nil, ErrNoDataset
    }
    return s.st.transform.FeatureNames(), nil
}

// ClassValues lists the target column's distinct values, most frequent
// first, for the class selector.
func (s *Session) ClassValues() ([]string, error) {
    if !s.mu.TryLock() {
        return nil, ErrBusy
    }
    defer s.mu.Unlock()
    if s.st.labels == nil {
        return nil, ErrNoDataset
    }
    return append([]string(nil), s.st.classValues...), nil
}

// Accuracies returns the cached (test, validation) accuracy pair.
func (s *Session) Accuracies() (float64, float64, error) {
    if !s.mu.TryLock() {
        return 0, 0, ErrBusy
    }
    defer s.mu.Unlock()
    if s.st.model == nil {
        return 0, 0, ErrNoModel
    }
    return s.st.testAcc, s.st.valAcc, nil
}

// ModelName reports the trained model family, if any.
func (s *Session) ModelName() (string, error) {
    if !s.mu.TryLock() {
        return "", ErrBusy
    }
    defer s.mu.Unlock()
    if s.st.model == nil {
        return "", ErrNoModel
    }
    return s.st.model.Name(), nil
}

// Manager tracks active sessions by id.
type Manager struct {
    mu       sync.RWMutex
    logger   *zap.Logger
    sessions map[string]*Session
}

func NewManager(logger *zap.Logger) *Manager {
    return &Manager{logger: logger, sessions: map[string]*Session{}}
}

func (m *Manager) Create() *Session {
    s := &Session{ID: uuid.NewString(), CreatedAt: time.Now(), logger: m.logger}
    m.mu.Lock()
    m.sessions[s.ID] = s
    m.mu.Unlock()
    return s
}

func (m *Manager) Get(id string) (*Session, bool) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    s, ok := m.sessions[id]
    return s, ok
}

func (m *Manager) Delete(id string) {
    m.mu.Lock()
    delete(m.sessions, id)
    m.mu.Unlock()
}
