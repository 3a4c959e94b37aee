// Package components defines ECS components for the follow environment.
package components

// Agent links an entity to the population individual that controls it.
type Agent struct {
	ID int
}
