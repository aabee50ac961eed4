package analysis

// FillStrategy says how to handle missing values in one column
type FillStrategy string

const (
	FillDrop FillStrategy = "drop"
	FillMean FillStrategy = "mean"
	FillMode FillStrategy = "mode"
)

// NormalizeMethod says how to scale a numeric column
type NormalizeMethod string

const (
	NormalizeMinMax NormalizeMethod = "minmax"
	NormalizeZScore NormalizeMethod = "zscore"
)

// EncodingMethod says how to encode a non-numeric column
type EncodingMethod string

const (
	EncodingLabel  EncodingMethod = "label"
	EncodingOneHot EncodingMethod = "onehot"
)

// PreprocessStep is the per-column directive emitted by the selector and
// consumed exactly once by the preprocessing applier. Dimensions that do not
// apply to the column are left empty, not defaulted.
type PreprocessStep struct {
	Column    string          `json:"column"`
	FillNA    FillStrategy    `json:"fillna,omitempty"`
	Normalize NormalizeMethod `json:"normalize,omitempty"`
	Encoding  EncodingMethod  `json:"encoding,omitempty"`
}

// IsEmpty reports whether no directive applies to the column
func (s PreprocessStep) IsEmpty() bool {
	return s.FillNA == "" && s.Normalize == "" && s.Encoding == ""
}

// PlotKind classifies the visualization for a column pair
type PlotKind string

const (
	PlotScatter PlotKind = "scatter"
	PlotBox     PlotKind = "box"
	PlotHeatmap PlotKind = "heatmap"
)

// PairRecommendation is one column pair worth visualizing, with the plot
// kind determined by the dtype combination
type PairRecommendation struct {
	Column1 string   `json:"column1"`
	Column2 string   `json:"column2"`
	Plot    PlotKind `json:"plot"`
}

// ProblemType is the downstream modeling task, derived from the target dtype
type ProblemType string

const (
	ProblemRegression     ProblemType = "regression"
	ProblemClassification ProblemType = "classification"
)

// TargetStrategy selects how the target column is chosen when no hint names
// one explicitly
type TargetStrategy string

const (
	// TargetLast picks the last column in profile order (the default)
	TargetLast TargetStrategy = "last"
	// TargetInfer prefers a trailing low-cardinality non-numeric column
	TargetInfer TargetStrategy = "infer"
)

// Hint carries caller-supplied overrides into the selector
type Hint struct {
	TargetColumn   string         `json:"targetColumn,omitempty"`
	ProblemType    ProblemType    `json:"problemType,omitempty"`
	TargetStrategy TargetStrategy `json:"targetStrategy,omitempty"`
}

// ModelCandidate is one entry of the static model recommendation table
type ModelCandidate struct {
	Model  string         `json:"model"`
	Score  float64        `json:"score"`
	Reason string         `json:"reason"`
	Params map[string]any `json:"params"`
}

// ModelRecommendation is the primary candidate plus ranked alternatives
type ModelRecommendation struct {
	ModelCandidate
	Alternatives []ModelCandidate `json:"alternatives"`
}

// SelectorResult is the pipeline's central artifact. Built once by the
// selector; the visualizer, preprocessor and trainer each read a projection
// of it. If the input profile was empty every field is empty/nil.
type SelectorResult struct {
	SelectedColumns              []string             `json:"selectedColumns"`
	RecommendedPairs             []PairRecommendation `json:"recommendedPairs"`
	PreprocessingRecommendations []PreprocessStep     `json:"preprocessingRecommendations"`
	TargetColumn                 string               `json:"targetColumn,omitempty"`
	ProblemType                  ProblemType          `json:"problemType,omitempty"`
	ModelRecommendation          *ModelRecommendation `json:"mlModelRecommendation,omitempty"`
}

// EmptySelectorResult is the defined result for empty input: no partial
// derivation is ever produced.
func EmptySelectorResult() SelectorResult {
	return SelectorResult{
		SelectedColumns:              []string{},
		RecommendedPairs:             []PairRecommendation{},
		PreprocessingRecommendations: []PreprocessStep{},
	}
}

// VisualizationProjection is the slice of the selector result the external
// visualizer needs
type VisualizationProjection struct {
	SelectedColumns  []string             `json:"selectedColumns"`
	RecommendedPairs []PairRecommendation `json:"recommendedPairs"`
}

// TrainingProjection is the slice of the selector result the external model
// trainer needs
type TrainingProjection struct {
	TargetColumn        string               `json:"targetColumn"`
	ProblemType         ProblemType          `json:"problemType"`
	ModelRecommendation *ModelRecommendation `json:"mlModelRecommendation,omitempty"`
}

// Visualization returns the visualizer's projection
func (r *SelectorResult) Visualization() VisualizationProjection {
	return VisualizationProjection{
		SelectedColumns:  r.SelectedColumns,
		RecommendedPairs: r.RecommendedPairs,
	}
}

// Training returns the trainer's projection
func (r *SelectorResult) Training() TrainingProjection {
	return TrainingProjection{
		TargetColumn:        r.TargetColumn,
		ProblemType:         r.ProblemType,
		ModelRecommendation: r.ModelRecommendation,
	}
}
