package fiscal

import (
	"strings"

	"github.com/adlift/cashout/internal/config"
	"go.uber.org/fx"
)

// Module provides the policy selector.
var Module = fx.Module("fiscal",
	fx.Provide(NewSelector),
)

// PolicyProvider yields the policy to apply for the next calculation.
type PolicyProvider interface {
	Active() (CalculationPolicy, error)
}

// Selector resolves the active calculation policy from configuration. The
// holder hot-reloads, so Active is consulted per calculation rather than
// captured at startup.
type Selector struct {
	holder *config.FiscalConfigHolder
}

func NewSelector(holder *config.FiscalConfigHolder) PolicyProvider {
	return &Selector{holder: holder}
}

func (s *Selector) Active() (CalculationPolicy, error) {
	cfg := s.holder.Get()
	return NewPolicy(strings.ToLower(strings.TrimSpace(cfg.Policy)), cfg.AdditionWithholdingRate)
}

// Static pins the provider to one policy, bypassing configuration.
func Static(policy CalculationPolicy) PolicyProvider {
	return staticProvider{policy: policy}
}

type staticProvider struct {
	policy CalculationPolicy
}

func (p staticProvider) Active() (CalculationPolicy, error) {
	return p.policy, nil
}
