package domain

import "fmt"

// RiskLevel is a totally ordered risk classification: LOW < MEDIUM < HIGH < CRITICAL
type RiskLevel int

const (
	RiskLevelLow RiskLevel = iota
	RiskLevelMedium
	RiskLevelHigh
	RiskLevelCritical
)

var riskLevelInfo = [...]struct {
	name        string
	displayName string
	description string
}{
	RiskLevelLow:      {"LOW", "Stable", "within the normal range"},
	RiskLevelMedium:   {"MEDIUM", "Caution", "needs attention"},
	RiskLevelHigh:     {"HIGH", "Warning", "in the risk range"},
	RiskLevelCritical: {"CRITICAL", "Critical", "immediate action required"},
}

// String returns the enum name, e.g. "HIGH"
func (l RiskLevel) String() string {
	if !l.valid() {
		return fmt.Sprintf("RiskLevel(%d)", int(l))
	}
	return riskLevelInfo[l].name
}

// DisplayName is the short label shown to users
func (l RiskLevel) DisplayName() string {
	if !l.valid() {
		return l.String()
	}
	return riskLevelInfo[l].displayName
}

// Description explains the level to users
func (l RiskLevel) Description() string {
	if !l.valid() {
		return ""
	}
	return riskLevelInfo[l].description
}

func (l RiskLevel) IsHigherThan(other RiskLevel) bool { return l > other }
func (l RiskLevel) IsLowerThan(other RiskLevel) bool  { return l < other }

// ParseRiskLevel parses an enum name such as "MEDIUM"
func ParseRiskLevel(s string) (RiskLevel, error) {
	for l := range riskLevelInfo {
		if riskLevelInfo[l].name == s {
			return RiskLevel(l), nil
		}
	}
	return RiskLevelLow, fmt.Errorf("%w: risk level %q", ErrMalformedValue, s)
}

// MaxRiskLevel returns the higher of a and b
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if a >= b {
		return a
	}
	return b
}

func (l RiskLevel) valid() bool {
	return l >= RiskLevelLow && l <= RiskLevelCritical
}

// RiskFactor is one explained finding of an analyzer
type RiskFactor struct {
	Category string
	Level    RiskLevel
	Message  string
}

// IsHighRisk is true at HIGH or above
func (f RiskFactor) IsHighRisk() bool {
	return f.Level >= RiskLevelHigh
}

// RiskMetrics is the finalized result of an analysis: a subject, its ordered factors and
// the overall level, which is always the maximum factor level (LOW without factors).
// It is only produced by RiskAccumulator.Finish and never changes afterwards.
type RiskMetrics struct {
	subject string
	overall RiskLevel
	factors []RiskFactor
}

func (m RiskMetrics) Subject() string           { return m.subject }
func (m RiskMetrics) OverallRiskLevel() RiskLevel { return m.overall }

// Factors returns a copy of the factors in the order they were found
func (m RiskMetrics) Factors() []RiskFactor {
	out := make([]RiskFactor, len(m.factors))
	copy(out, m.factors)
	return out
}

// RequiresAction is true when the overall level is HIGH or above
func (m RiskMetrics) RequiresAction() bool {
	return m.overall >= RiskLevelHigh
}

// IsStable is true when the overall level is LOW
func (m RiskMetrics) IsStable() bool {
	return m.overall == RiskLevelLow
}

// RiskAccumulator collects factors for one subject. Finish consumes it.
type RiskAccumulator struct {
	subject  string
	factors  []RiskFactor
	finished bool
}

// NewRiskAccumulator starts collecting factors for subject
func NewRiskAccumulator(subject string) *RiskAccumulator {
	return &RiskAccumulator{subject: subject}
}

// Add appends a factor. Adding after Finish is a programming error and panics.
func (a *RiskAccumulator) Add(category string, level RiskLevel, message string) {
	if a.finished {
		panic("domain: RiskAccumulator.Add called after Finish")
	}
	a.factors = append(a.factors, RiskFactor{Category: category, Level: level, Message: message})
}

// Finish computes the overall level once and returns the immutable metrics
func (a *RiskAccumulator) Finish() RiskMetrics {
	if a.finished {
		panic("domain: RiskAccumulator.Finish called twice")
	}
	a.finished = true

	overall := RiskLevelLow
	for _, f := range a.factors {
		overall = MaxRiskLevel(overall, f.Level)
	}

	factors := a.factors
	a.factors = nil
	return RiskMetrics{subject: a.subject, overall: overall, factors: factors}
}
