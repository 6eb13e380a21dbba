package hypothesis

// Series is one labelled sample drawn on a chart.
type Series struct {
	Label  string
	Values []float64
}

// HistogramSpec describes an overlaid histogram.
type HistogramSpec struct {
	Title  string
	XLabel string
	Bins   int
	Series []Series
}

// BarSpec describes grouped bars over Categories. Each series carries one value
// per category, already normalized according to Norm.
type BarSpec struct {
	Title      string
	XLabel     string
	Norm       string
	Categories []string
	Series     []Series
}

// Charter renders charts and returns the written file path.
type Charter interface {
	Histogram(spec HistogramSpec) (string, error)
	CategoryBars(spec BarSpec) (string, error)
}
