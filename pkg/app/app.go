// Package app defines the runtime contract cmd/* binaries start
// application components through.
package app

// Runner represents a runnable application component.
type Runner interface {
	Run() error
}
