package mpu401

import (
	"github.com/warthog618/go-gpiocdev"
)

/*------------------------------------------------------------------
 *
 * Name:	GPIOIRQLine
 *
 * Purpose:	Concrete IRQLine backed by a real GPIO output pin, for
 *		running this package against actual synthesizer hardware
 *		wired to a Linux SBC's IRQ-simulating GPIO header rather
 *		than a virtual PIC.
 *
 *--------------------------------------------------------------------*/

type GPIOIRQLine struct {
	line *gpiocdev.Line
}

// NewGPIOIRQLine requests offset on chip (e.g. "gpiochip0") as an output,
// idle low (deasserted).
func NewGPIOIRQLine(chip string, offset int) (*GPIOIRQLine, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &GPIOIRQLine{line: line}, nil
}

func (g *GPIOIRQLine) Assert() {
	_ = g.line.SetValue(1)
}

func (g *GPIOIRQLine) Deassert() {
	_ = g.line.SetValue(0)
}

func (g *GPIOIRQLine) Close() error {
	return g.line.Close()
}
