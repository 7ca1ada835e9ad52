package sim

import "time"

// Service is an opaque per-tick collaborator. It runs after stage
// activation and before tile simulation, and may read or mutate the city.
type Service interface {
	Simulate(c *City, delta time.Duration)
}

// ServiceFunc adapts a function to the Service interface
type ServiceFunc func(c *City, delta time.Duration)

// Simulate calls f(c, delta)
func (f ServiceFunc) Simulate(c *City, delta time.Duration) {
	f(c, delta)
}
