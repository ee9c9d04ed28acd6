// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cbus adapts a periph.io I2C bus to the i2cxfer backend
// contract.
//
// It lets the chunked transaction engine drive devices on any bus the host
// exposes (Linux i2c-dev, FT232H, ...) instead of a dedicated bridge chip.
// Generic buses expose no phase-level control, so the direct token
// execution capability is unavailable; repeated start reads map to a
// single combined write+read transfer, which is what i2c.Bus.Tx performs.
package i2cbus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

// ErrNoDirect is returned by Execute: periph.io buses cannot sequence raw
// bus phases.
var ErrNoDirect = errors.New("direct opcode execution is not supported on a generic bus")

// Backend drives register transfers over an i2c.Bus.
type Backend struct {
	bus i2c.Bus
}

// New returns a backend over bus. The bus stays owned by the backend until
// Close.
func New(bus i2c.Bus) *Backend {
	return &Backend{bus: bus}
}

func (b *Backend) String() string {
	return fmt.Sprintf("i2cbus{%s}", b.bus)
}

// regBytes frames a physical register address MSB first over regBits/8
// bytes.
func regBytes(physReg uint32, regBits int) ([]byte, error) {
	switch regBits {
	case 8:
		return []byte{byte(physReg)}, nil
	case 16:
		return []byte{byte(physReg >> 8), byte(physReg)}, nil
	case 32:
		return []byte{byte(physReg >> 24), byte(physReg >> 16), byte(physReg >> 8), byte(physReg)}, nil
	}
	return nil, fmt.Errorf("%w: %d bits", regcodec.ErrUnsupportedWidth, regBits)
}

// Probe reports whether a device acknowledges a zero length write at addr.
func (b *Backend) Probe(addr uint16) bool {
	return b.bus.Tx(addr, []byte{}, nil) == nil
}

// WriteBlock writes the register pointer and p in one transfer.
func (b *Backend) WriteBlock(addr uint16, physReg uint32, regBits int, p []byte, mode i2cxfer.Mode) error {
	if mode != i2cxfer.ModeNormal {
		return fmt.Errorf("%w: %s write", i2cxfer.ErrInvalidMode, mode)
	}
	reg, err := regBytes(physReg, regBits)
	if err != nil {
		return err
	}
	return b.bus.Tx(addr, append(reg, p...), nil)
}

// ReadBlock reads n bytes starting at physReg. ModeNormal releases the bus
// between the pointer write and the read; ModeRepeatedStart keeps it in
// one combined transfer.
func (b *Backend) ReadBlock(addr uint16, physReg uint32, regBits int, n int, mode i2cxfer.Mode) ([]byte, error) {
	reg, err := regBytes(physReg, regBits)
	if err != nil {
		return nil, err
	}
	r := make([]byte, n)
	switch mode {
	case i2cxfer.ModeNormal:
		if err := b.bus.Tx(addr, reg, nil); err != nil {
			return nil, err
		}
		if err := b.bus.Tx(addr, nil, r); err != nil {
			return nil, err
		}
	case i2cxfer.ModeRepeatedStart:
		if err := b.bus.Tx(addr, reg, r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s read", i2cxfer.ErrInvalidMode, mode)
	}
	return r, nil
}

// Execute always fails with ErrNoDirect.
func (b *Backend) Execute(seq []i2cxfer.Token) ([]byte, error) {
	return nil, ErrNoDirect
}

// Close releases the bus if it is closeable.
func (b *Backend) Close() error {
	if bc, ok := b.bus.(i2c.BusCloser); ok {
		return bc.Close()
	}
	return nil
}

var _ i2cxfer.Backend = &Backend{}
