package entity

import "time"

type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

const StatusSuccess = "success"

// AnalysisResult is returned to the caller and never persisted.
type AnalysisResult struct {
	Status        string    `json:"status"`
	PotentialRisk RiskLevel `json:"potential_risk"`
	Details       string    `json:"details"`
}

// RiskEvent is published to alert channels when a high risk is classified.
type RiskEvent struct {
	SessionID     string    `json:"session_id"`
	Filename      string    `json:"filename"`
	PotentialRisk RiskLevel `json:"potential_risk"`
	Details       string    `json:"details"`
	FrameCount    int       `json:"frame_count"`
	DetectedAt    time.Time `json:"detected_at"`
}

// ModelInfo describes one model visible to the configured credentials.
type ModelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supported_generation_methods"`
}
