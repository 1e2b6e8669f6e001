// Package services implements the driving port interfaces.
// Services contain the core workflow logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go; every network or disk concern sits behind a
// driven port.
package services
