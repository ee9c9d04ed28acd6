// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cxfer

// Mode selects how a transfer addresses the device register.
type Mode uint8

const (
	// ModeNormal uses the transport's native addressed read/write, with a
	// stop condition between the address and data phases of a read.
	ModeNormal Mode = iota
	// ModeRepeatedStart re-addresses the device for the data phase without
	// releasing the bus. Only valid for reads.
	ModeRepeatedStart
)

var modeToStringMap = map[Mode]string{
	ModeNormal:        "normal",
	ModeRepeatedStart: "repeated start",
}

func (m Mode) String() string {
	if v, ok := modeToStringMap[m]; ok {
		return v
	}
	return "unknown"
}

// Backend is the capability set a physical transport exposes to the
// transaction engine. One bounded sub-transfer maps to exactly one
// WriteBlock or ReadBlock call.
//
// physReg is the physical on-wire register address, already byte-order
// adjusted; regBits tells the transport how many address bytes to frame.
type Backend interface {
	// Probe reports whether a device answers at addr. It never fails for a
	// valid address.
	Probe(addr uint16) bool
	// WriteBlock writes exactly len(p) bytes starting at physReg.
	WriteBlock(addr uint16, physReg uint32, regBits int, p []byte, mode Mode) error
	// ReadBlock returns exactly n bytes starting at physReg, or fails.
	ReadBlock(addr uint16, physReg uint32, regBits int, n int, mode Mode) ([]byte, error)
	// Execute runs a raw token sequence through the transport's direct bus
	// control primitive and returns whatever bytes the read phases yield.
	Execute(seq []Token) ([]byte, error)
	// Close releases the underlying transport.
	Close() error
}
