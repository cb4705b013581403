package matching

import "simvenue/internal/rng"

// FillModel is the pure function from market state plus order to slippage,
// backed by a seeded RNG so that replaying identical (ticks, commands, seed)
// sequences reproduces byte-identical fills (spec.md §5).
type FillModel struct {
	ProbSlippage    float64
	ProbFillOnLimit float64
	source          *rng.Source
}

// NewFillModel creates a FillModel drawing from source. probFillOnLimit is
// the probability that a resting (MAKER) limit order fills on a tick that
// merely touches its price; 1.0 reproduces a venue that fills every resting
// order the instant the market reaches it.
func NewFillModel(probSlippage, probFillOnLimit float64, source *rng.Source) *FillModel {
	return &FillModel{ProbSlippage: probSlippage, ProbFillOnLimit: probFillOnLimit, source: source}
}

// MakerFillFires draws a Bernoulli(ProbFillOnLimit) trial for a resting
// limit order touched by the current tick. A nil source (no FillModel
// configured) always fires, so an engine built without one keeps the
// simpler fill-on-touch behavior.
func (m *FillModel) MakerFillFires() bool {
	if m == nil || m.source == nil {
		return true
	}
	return m.source.Bernoulli(m.ProbFillOnLimit)
}

// SlippageTicks draws a Bernoulli(ProbSlippage) trial and, if it fires,
// returns the number of ticks (always magnitude 1) to move the fill price in
// the unfavorable direction for side: +1 for BUY (price moves up, worse for
// a buyer), -1 for SELL (price moves down, worse for a seller). Returns 0 if
// the trial does not fire.
func (m *FillModel) SlippageTicks(side string) int {
	if m == nil || m.source == nil {
		return 0
	}
	if !m.source.Bernoulli(m.ProbSlippage) {
		return 0
	}
	if side == Buy {
		return 1
	}
	return -1
}
