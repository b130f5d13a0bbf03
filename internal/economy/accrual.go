package economy

import "time"

// AccrueProfit returns passive income earned over elapsed at profitPerHour.
func AccrueProfit(profitPerHour float64, elapsed time.Duration) float64 {
	if profitPerHour <= 0 || elapsed <= 0 {
		return 0
	}
	return profitPerHour * elapsed.Seconds() / 3600
}

// RegenEnergy refills energy at perSecond over elapsed, capped at maxEnergy.
func RegenEnergy(energy, maxEnergy, perSecond float64, elapsed time.Duration) float64 {
	if maxEnergy <= 0 {
		return 0
	}
	if energy < 0 {
		energy = 0
	}
	if elapsed > 0 && perSecond > 0 {
		energy += elapsed.Seconds() * perSecond
	}
	if energy > maxEnergy {
		energy = maxEnergy
	}
	return energy
}
