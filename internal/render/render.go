// Package render turns interpretation artifacts into the PNG charts the
// dashboard serves: bar rankings for importances/attributions and line
// charts for dependence curves.
package render

import (
    "io"

    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "mlboard/internal/interpret"
)

// BarRanking draws a ranked-feature bar chart, best first.
func BarRanking(title string, ranked []interpret.RankedFeature) (*plot.Plot, error) {
    p := plot.New()
    p.Title.Text = title
    p.Y.Label.Text = "weight"

    values := make(plotter.Values, len(ranked))
    names := make([]string, len(ranked))
    for i, r := range ranked {
        values[i] = r.Weight
        names[i] = r.Feature
    }
    bars, err := plotter.NewBarChart(values, vg.Points(18))
    if err != nil {
        return nil, err
    }
    bars.LineStyle.Width = vg.Length(0)
    bars.Color = plotutil.Color(2)
    p.Add(bars)
    p.NominalX(names...)
    p.X.Tick.Label.Rotation = 0.9
    p.X.Tick.Label.XAlign = -0.9
    return p, nil
}

// DependenceCurve draws a partial-dependence curve for one feature and class.
func DependenceCurve(curve *interpret.Curve) (*plot.Plot, error) {
    p := plot.New()
    p.Title.Text = curve.Feature + " → P(" + curve.Class + ")"
    p.X.Label.Text = curve.Feature
    p.Y.Label.Text = "mean predicted probability"

    pts := make(plotter.XYs, len(curve.Grid))
    for i := range curve.Grid {
        pts[i].X = curve.Grid[i]
        pts[i].Y = curve.Values[i]
    }
    if err := plotutil.AddLinePoints(p, curve.Class, pts); err != nil {
        return nil, err
    }
    return p, nil
}

// SavePNG writes a plot to a file path.
func SavePNG(p *plot.Plot, path string) error {
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// WritePNG streams a plot as PNG to w.
func WritePNG(p *plot.Plot, w io.Writer) error {
    wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
    if err != nil {
        return err
    }
    _, err = wt.WriteTo(w)
    return err
}
