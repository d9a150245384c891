package evaluation

import "fmt"

type GuardrailConfig struct {
	MinAccuracy       float64
	MaxWrongMatchRate float64
}

// Guardrails gate a resolution run so that threshold changes cannot
// silently trade misses for wrong matches.
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxWrongMatchRate <= 0 {
		config.MaxWrongMatchRate = 0.05
	}
	return &Guardrails{config: config}
}

// Check returns one message per violated bound; nil means the run passes.
func (g *Guardrails) Check(s *EvalSummary) []string {
	var violations []string
	if s.Accuracy < g.config.MinAccuracy {
		violations = append(violations, fmt.Sprintf("accuracy %.3f below minimum %.3f", s.Accuracy, g.config.MinAccuracy))
	}
	if rate := s.WrongMatchRate(); rate > g.config.MaxWrongMatchRate {
		violations = append(violations, fmt.Sprintf("wrong match rate %.3f above maximum %.3f", rate, g.config.MaxWrongMatchRate))
	}
	return violations
}
