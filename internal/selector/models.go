package selector

import (
	"csvpilot/domain/analysis"
)

// recommendModel returns the ranked candidate list for the problem type.
// This is intentionally a static lookup keyed only by problem type, so the
// recommendation stays explainable; it is not a data-driven ranking.
func recommendModel(problem analysis.ProblemType) *analysis.ModelRecommendation {
	var candidates []analysis.ModelCandidate
	switch problem {
	case analysis.ProblemRegression:
		candidates = []analysis.ModelCandidate{
			{
				Model:  "XGBoostRegressor",
				Score:  0.90,
				Reason: "boosting works well on mostly-numeric data with many columns",
				Params: map[string]any{"max_depth": 6, "learning_rate": 0.1},
			},
			{
				Model:  "RandomForestRegressor",
				Score:  0.85,
				Reason: "tree ensemble, robust general-purpose choice",
				Params: map[string]any{"n_estimators": 100, "max_depth": 5},
			},
			{
				Model:  "LinearRegression",
				Score:  0.70,
				Reason: "fast and simple when relationships are mostly linear",
				Params: map[string]any{},
			},
		}
	case analysis.ProblemClassification:
		candidates = []analysis.ModelCandidate{
			{
				Model:  "XGBoostClassifier",
				Score:  0.91,
				Reason: "boosting works well on mostly-numeric data with many columns",
				Params: map[string]any{"max_depth": 6, "learning_rate": 0.1},
			},
			{
				Model:  "RandomForestClassifier",
				Score:  0.88,
				Reason: "general-purpose tree-based classifier",
				Params: map[string]any{"n_estimators": 100, "max_depth": 5},
			},
			{
				Model:  "LogisticRegression",
				Score:  0.75,
				Reason: "good fit for simple binary classification",
				Params: map[string]any{},
			},
		}
	default:
		return nil
	}

	return &analysis.ModelRecommendation{
		ModelCandidate: candidates[0],
		Alternatives:   candidates[1:],
	}
}
