package sim

import "math"

// z-score of a two-sided 95% interval
const z95 = 1.96

// SimulationResult summarises the payoffs of one action over many trials
type SimulationResult struct {
	Action   Action  `json:"action"`
	N        int     `json:"n"`
	EV       float64 `json:"ev"`
	WinRate  float64 `json:"win_rate"`
	LossRate float64 `json:"loss_rate"`
	PushRate float64 `json:"push_rate"`
	StdDev   float64 `json:"stddev"`
}

// StdErr returns the standard error of the EV estimate
func (r SimulationResult) StdErr() float64 {
	if r.N == 0 {
		return 0
	}
	return r.StdDev / math.Sqrt(float64(r.N))
}

// ConfidenceInterval returns the 95% confidence interval for the EV
func (r SimulationResult) ConfidenceInterval() (lower, upper float64) {
	margin := z95 * r.StdErr()
	return r.EV - margin, r.EV + margin
}

// Recommendation is the outcome of evaluating every legal action for a state
type Recommendation struct {
	PlayerHand []string                    `json:"player_hand"`
	DealerHand []string                    `json:"dealer_hand"`
	Results    map[Action]SimulationResult `json:"results"`
	Evaluated  []Action                    `json:"evaluated"`
	BestAction Action                      `json:"best_action"`
	BestEV     float64                     `json:"best_ev"`
}

// aggregate reduces trial payoffs to a result. An empty sample reports zero
// for every rate rather than dividing by zero.
func aggregate(action Action, payoffs []float64) SimulationResult {
	res := SimulationResult{Action: action, N: len(payoffs)}
	if res.N == 0 {
		return res
	}

	n := float64(res.N)
	var sum float64
	var wins, losses int
	for _, p := range payoffs {
		sum += p
		switch {
		case p > 0:
			wins++
		case p < 0:
			losses++
		}
	}
	mean := sum / n

	var sq float64
	for _, p := range payoffs {
		d := p - mean
		sq += d * d
	}

	res.EV = mean
	res.WinRate = float64(wins) / n
	res.LossRate = float64(losses) / n
	res.PushRate = float64(res.N-wins-losses) / n
	res.StdDev = math.Sqrt(sq / n)
	return res
}
