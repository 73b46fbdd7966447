//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives the indicator line on actual hardware using Linux GPIO
// character device.
type RealDriver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealDriver requests the indicator pin as an output, initially low.
func NewRealDriver(pin int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request indicator pin %d: %w", pin, err)
	}

	return &RealDriver{chip: chip, line: line}, nil
}

// Set drives the line high while the door is open, low otherwise.
func (d *RealDriver) Set(open bool) error {
	v := 0
	if open {
		v = 1
	}
	if err := d.line.SetValue(v); err != nil {
		return fmt.Errorf("set indicator pin: %w", err)
	}
	return nil
}

// Close drives the line low and releases GPIO resources, so the indicator
// never stays lit across a restart.
func (d *RealDriver) Close() error {
	var errs []error

	if d.line != nil {
		if err := d.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear indicator pin: %w", err))
		}
		if err := d.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close indicator pin: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
