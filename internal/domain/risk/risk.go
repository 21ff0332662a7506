// Package risk converts injury designations into DNP probabilities.
package risk

import "github.com/okian/ttfl/internal/domain/model"

// dnpRisk is indexed by model.InjuryStatus.
var dnpRisk = [...]float64{
	model.Healthy:      0,
	model.Probable:     0.10,
	model.Questionable: 0.40,
	model.Doubtful:     0.75,
	model.Out:          1,
}

// DNPRisk returns the probability, in [0, 1], that a player with the given
// status does not play. Unknown statuses are treated as Healthy.
func DNPRisk(status model.InjuryStatus) float64 {
	if !status.Valid() {
		return 0
	}
	return dnpRisk[status]
}

// DNPRiskPercent is DNPRisk expressed in percent.
func DNPRiskPercent(status model.InjuryStatus) float64 {
	return DNPRisk(status) * 100
}

// Adjust discounts baseline by the DNP probability of status.
func Adjust(baseline float64, status model.InjuryStatus) float64 {
	return baseline * (1 - DNPRisk(status))
}
