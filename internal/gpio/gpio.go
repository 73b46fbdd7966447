// Package gpio drives the door indicator output with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Driver drives the indicator line.
type Driver interface {
	// Set drives the line high while the door is open, low otherwise.
	Set(open bool) error

	// Close releases GPIO resources.
	Close() error
}

// DefaultPin is the BCM pin for the door indicator LED.
const DefaultPin = 17
