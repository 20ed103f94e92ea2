// Package risk turns free-text vision model output into a coarse risk level.
package risk

import (
	"strings"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
)

// Prompt instructs the model to answer with one of the sentinels Classify
// understands.
const Prompt = "Analyze the following video frames for potential risk situations. " +
	"Specifically, determine if a 'fall', 'collapse', or 'seizure' is detected. " +
	"Respond with 'DETECTED: [risk_type]' if a risk is found, otherwise respond with 'NO_RISK'. " +
	"Provide a brief explanation if a risk is detected."

const (
	sentinelFall     = "DETECTED: FALL"
	sentinelCollapse = "DETECTED: COLLAPSE"
	sentinelSeizure  = "DETECTED: SEIZURE"
	sentinelNoRisk   = "NO_RISK"
)

const (
	DetailsFallOrCollapse = "fall or collapse detected"
	DetailsSeizure        = "seizure detected"
	DetailsNoRisk         = "no specific risk detected"
)

// Classify applies the sentinel rules to the model output. Detection
// sentinels win over NO_RISK; output with no sentinel at all is returned
// verbatim as low-risk details for human review.
func Classify(modelText string) entity.AnalysisResult {
	upper := strings.ToUpper(modelText)
	result := entity.AnalysisResult{
		Status:        entity.StatusSuccess,
		PotentialRisk: entity.RiskLow,
	}

	switch {
	case strings.Contains(upper, sentinelFall), strings.Contains(upper, sentinelCollapse):
		result.PotentialRisk = entity.RiskHigh
		result.Details = DetailsFallOrCollapse
	case strings.Contains(upper, sentinelSeizure):
		result.PotentialRisk = entity.RiskHigh
		result.Details = DetailsSeizure
	case strings.Contains(upper, sentinelNoRisk):
		result.Details = DetailsNoRisk
	default:
		result.Details = modelText
	}

	return result
}
