package main

import (
    "errors"
    "net/http"
    "os"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/joho/godotenv"
    "go.uber.org/zap"
    "gonum.org/v1/plot"

    "mlboard/internal/dataset"
    "mlboard/internal/interpret"
    "mlboard/internal/models"
    "mlboard/internal/render"
    "mlboard/internal/session"
    "mlboard/internal/split"
    "mlboard/pkg/utils"
)

var manager *session.Manager

func main() {
    _ = godotenv.Load()
    logger := utils.Logger()
    defer logger.Sync()

    manager = session.NewManager(logger)

    r := gin.Default()

    r.Static("/static", "cmd/dashboard/static")
    r.GET("/dashboard", func(c *gin.Context) {
        c.File("cmd/dashboard/static/index.html")
    })

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/sessions", handleCreateSession)
    api.DELETE("/sessions/:id", handleDeleteSession)
    api.POST("/sessions/:id/dataset", handleUpload)
    api.POST("/sessions/:id/train", handleTrain)
    api.GET("/sessions/:id/report", handleReport)
    api.GET("/sessions/:id/interpret", handleInterpret)
    api.GET("/sessions/:id/interpret/plot", handleInterpretPlot)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    logger.Info("dashboard listening", zap.String("port", port))
    r.Run(":" + port)
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

// httpStatus maps pipeline errors onto readable HTTP responses. Nothing is
// retried; a failed recomputation leaves the session's last-good state.
func httpStatus(err error) int {
    var invalid *dataset.InvalidInputError
    var insufficient *split.InsufficientDataError
    var unsupported *models.UnsupportedModelError
    var unkFeature *interpret.UnknownFeatureError
    var unkClass *interpret.UnknownClassError
    switch {
    case errors.Is(err, session.ErrBusy):
        return http.StatusConflict
    case errors.Is(err, interpret.ErrLocalAttribution):
        return http.StatusNotImplemented
    case errors.As(err, &invalid), errors.As(err, &insufficient), errors.As(err, &unsupported),
        errors.As(err, &unkFeature), errors.As(err, &unkClass),
        errors.Is(err, session.ErrNoDataset), errors.Is(err, session.ErrNoModel):
        return http.StatusBadRequest
    }
    return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
    c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func getSession(c *gin.Context) (*session.Session, bool) {
    s, ok := manager.Get(c.Param("id"))
    if !ok {
        c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
        return nil, false
    }
    return s, true
}

func handleCreateSession(c *gin.Context) {
    s := manager.Create()
    c.JSON(http.StatusOK, gin.H{"id": s.ID})
}

func handleDeleteSession(c *gin.Context) {
    manager.Delete(c.Param("id"))
    c.Status(http.StatusNoContent)
}

func handleUpload(c *gin.Context) {
    s, ok := getSession(c)
    if !ok { return }

    fh, err := c.FormFile("file")
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload"}); return
    }
    f, err := fh.Open()
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"}); return
    }
    defer f.Close()

    seed := int64(0)
    if q := c.Query("seed"); q != "" {
        seed, _ = strconv.ParseInt(q, 10, 64)
    }
    if err := s.Upload(f, c.PostForm("target"), seed); err != nil {
        fail(c, err); return
    }

    columns, head, err := s.Preview(5)
    if err != nil { fail(c, err); return }
    classes, _ := s.ClassValues()
    features, _ := s.FeatureNames()
    c.JSON(http.StatusOK, gin.H{
        "columns":  columns,
        "preview":  head,
        "features": features,
        "classes":  classes,
    })
}

type trainReq struct {
    Model string `json:"model"`
}

func handleTrain(c *gin.Context) {
    s, ok := getSession(c)
    if !ok { return }
    var req trainReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    if req.Model == "" {
        req.Model = os.Getenv("MODEL_ALGO")
        if req.Model == "" { req.Model = "rf" }
    }
    kind, err := models.KindFromString(req.Model)
    if err != nil { fail(c, err); return }
    testAcc, valAcc, err := s.Train(kind)
    if err != nil { fail(c, err); return }
    name, _ := s.ModelName()
    c.JSON(http.StatusOK, gin.H{
        "model":               name,
        "test_accuracy":       testAcc,
        "validation_accuracy": valAcc,
    })
}

func handleReport(c *gin.Context) {
    s, ok := getSession(c)
    if !ok { return }
    es, err := session.EvalSplitFromString(c.Query("split"))
    if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
    rep, cm, classLabels, err := s.Evaluate(es)
    if err != nil { fail(c, err); return }
    c.JSON(http.StatusOK, gin.H{
        "report":           rep,
        "confusion_matrix": cm,
        "classes":          classLabels,
    })
}

func interpretRequest(c *gin.Context) (session.EvalSplit, interpret.Request, error) {
    es, err := session.EvalSplitFromString(c.Query("split"))
    if err != nil {
        return 0, interpret.Request{}, err
    }
    fw, err := interpret.FrameworkFromString(c.Query("framework"))
    if err != nil {
        return 0, interpret.Request{}, err
    }
    topK, _ := strconv.Atoi(c.Query("top_k"))
    iters, _ := strconv.Atoi(c.Query("iterations"))
    seed, _ := strconv.ParseInt(c.Query("seed"), 10, 64)
    return es, interpret.Request{
        Framework:  fw,
        Feature:    c.Query("feature"),
        Class:      c.Query("class"),
        TopK:       topK,
        Iterations: iters,
        Seed:       seed,
    }, nil
}

func handleInterpret(c *gin.Context) {
    s, ok := getSession(c)
    if !ok { return }
    es, req, err := interpretRequest(c)
    if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
    artifact, err := s.Interpret(es, req)
    if err != nil { fail(c, err); return }
    c.JSON(http.StatusOK, artifact)
}

func handleInterpretPlot(c *gin.Context) {
    s, ok := getSession(c)
    if !ok { return }
    es, req, err := interpretRequest(c)
    if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
    artifact, err := s.Interpret(es, req)
    if err != nil { fail(c, err); return }

    name, _ := s.ModelName()
    var p *plot.Plot
    switch artifact.Framework {
    case interpret.Permutation:
        p, err = render.BarRanking("Permutation Importances ("+name+")", artifact.Permutation.Weights)
    case interpret.PartialDependence:
        p, err = render.DependenceCurve(artifact.Curve)
    case interpret.Attribution:
        p, err = render.BarRanking("Attribution Ranking ("+name+")", artifact.Attribution)
    }
    if err != nil { fail(c, err); return }

    c.Header("Content-Type", "image/png")
    if err := render.WritePNG(p, c.Writer); err != nil {
        fail(c, err)
    }
}
