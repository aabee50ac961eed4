package selector

import (
	"log"
	"strings"

	"csvpilot/domain/analysis"
)

// onehotCardinalityCap is the largest cardinality still worth one-hot
// encoding; larger columns get label encoding
const onehotCardinalityCap = 10

// inferMinClasses / inferMaxClasses bound the cardinality of an acceptable
// inferred target column
const (
	inferMinClasses = 2
	inferMaxClasses = 30
)

// Selector derives the analysis-relevant column subset, visualization pairs,
// preprocessing directives, target column, problem type and model
// recommendation from a set of column profiles.
//
// It is a pure, stateless, single-pass function of its inputs: it never
// fails and a given input always maps to exactly one output.
type Selector struct{}

// NewSelector creates a selector
func NewSelector() *Selector {
	return &Selector{}
}

// Select runs the full derivation. An empty profile yields the defined empty
// result; there is no partial derivation.
func (s *Selector) Select(columnStats []analysis.ColumnStat, corr *analysis.CorrelationResult, hint *analysis.Hint) analysis.SelectorResult {
	if len(columnStats) == 0 {
		return analysis.EmptySelectorResult()
	}

	dtypeOf := make(map[string]analysis.DType, len(columnStats))
	for _, stat := range columnStats {
		dtypeOf[stat.Column] = stat.Dtype
	}

	selected := selectColumns(columnStats)
	pairs := recommendPairs(selected, dtypeOf)
	preprocessing := recommendPreprocessing(columnStats)
	target := chooseTarget(columnStats, hint)
	problem := deriveProblemType(target, dtypeOf, hint)
	model := recommendModel(problem)

	result := analysis.SelectorResult{
		SelectedColumns:              selected,
		RecommendedPairs:             pairs,
		PreprocessingRecommendations: preprocessing,
		TargetColumn:                 target,
		ProblemType:                  problem,
		ModelRecommendation:          model,
	}
	log.Printf("[Selector] selected=%d pairs=%d target=%s problem=%s", len(selected), len(pairs), target, problem)
	return result
}

// selectColumns drops identifier and code columns; they are analytically
// useless and must never become features or pair candidates
func selectColumns(columnStats []analysis.ColumnStat) []string {
	selected := make([]string, 0, len(columnStats))
	for _, stat := range columnStats {
		if !isIdentifierColumn(stat.Column) {
			selected = append(selected, stat.Column)
		}
	}
	return selected
}

func isIdentifierColumn(name string) bool {
	lower := strings.ToLower(name)
	idLike := lower == "id" ||
		strings.HasSuffix(lower, "id") ||
		strings.HasPrefix(lower, "id_")
	codeLike := lower == "code" ||
		strings.HasSuffix(lower, "code") ||
		strings.HasPrefix(lower, "code_")
	return idLike || codeLike
}

// recommendPairs enumerates every unordered pair of selected columns in
// filtered order. Deliberately exhaustive, not a correlation-driven
// shortlist.
func recommendPairs(selected []string, dtypeOf map[string]analysis.DType) []analysis.PairRecommendation {
	pairs := make([]analysis.PairRecommendation, 0)
	for i := 0; i < len(selected)-1; i++ {
		for j := i + 1; j < len(selected); j++ {
			a, b := selected[i], selected[j]
			pairs = append(pairs, analysis.PairRecommendation{
				Column1: a,
				Column2: b,
				Plot:    plotKind(dtypeOf[a], dtypeOf[b]),
			})
		}
	}
	return pairs
}

func plotKind(a, b analysis.DType) analysis.PlotKind {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return analysis.PlotScatter
	case a.IsNumeric() || b.IsNumeric():
		return analysis.PlotBox
	default:
		return analysis.PlotHeatmap
	}
}

// recommendPreprocessing derives one directive per original column, over the
// unfiltered list. Inapplicable dimensions stay empty.
func recommendPreprocessing(columnStats []analysis.ColumnStat) []analysis.PreprocessStep {
	steps := make([]analysis.PreprocessStep, 0, len(columnStats))
	for _, stat := range columnStats {
		step := analysis.PreprocessStep{Column: stat.Column}
		isNumeric := stat.Dtype.IsNumeric()

		if stat.Missing > 0 {
			if isNumeric {
				step.FillNA = analysis.FillMean
			} else {
				step.FillNA = analysis.FillMode
			}
		}
		if isNumeric {
			if stat.Numeric != nil && stat.Numeric.Std > 1 {
				step.Normalize = analysis.NormalizeZScore
			} else {
				step.Normalize = analysis.NormalizeMinMax
			}
		} else {
			if stat.Unique <= onehotCardinalityCap {
				step.Encoding = analysis.EncodingOneHot
			} else {
				step.Encoding = analysis.EncodingLabel
			}
		}
		steps = append(steps, step)
	}
	return steps
}

// chooseTarget resolves the target column: explicit hint wins, then the
// requested strategy, defaulting to the last column in profile order
func chooseTarget(columnStats []analysis.ColumnStat, hint *analysis.Hint) string {
	if hint != nil && hint.TargetColumn != "" {
		return hint.TargetColumn
	}

	target := columnStats[len(columnStats)-1].Column
	if hint != nil && hint.TargetStrategy == analysis.TargetInfer {
		// Prefer a trailing non-numeric column with a plausible class count
		for i := len(columnStats) - 1; i >= 0; i-- {
			stat := columnStats[i]
			if !stat.Dtype.IsNumeric() && stat.Unique >= inferMinClasses && stat.Unique <= inferMaxClasses {
				return stat.Column
			}
		}
	}
	return target
}

// deriveProblemType maps the target dtype to the modeling task; a hinted
// problem type overrides the derivation entirely
func deriveProblemType(target string, dtypeOf map[string]analysis.DType, hint *analysis.Hint) analysis.ProblemType {
	if hint != nil && hint.ProblemType != "" {
		return hint.ProblemType
	}
	if target == "" {
		return ""
	}
	dtype, ok := dtypeOf[target]
	if !ok {
		// Hinted target absent from the profile: no dtype, no problem type
		return ""
	}
	if dtype.IsNumeric() {
		return analysis.ProblemRegression
	}
	return analysis.ProblemClassification
}
