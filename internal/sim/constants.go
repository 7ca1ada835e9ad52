package sim

// Simulation constants not exposed through models.Config
const (
	// ResidentsPerTick is how many residents move into a residential
	// building each tick until it reaches its catalog capacity
	ResidentsPerTick = 1

	// hoursPerDay converts elapsed placement time to the day unit of the
	// modifier-weighted revenue path
	hoursPerDay = 24
)
