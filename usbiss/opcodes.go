// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usbiss

// Command bytes of the USB-ISS serial protocol.
const (
	cmdI2CAD1    = 0x55 // addressed transfer, 1 byte register address
	cmdI2CAD2    = 0x56 // addressed transfer, 2 byte register address
	cmdI2CDirect = 0x57 // raw bus phase sequence
	cmdI2CTest   = 0x58 // device presence check
	cmdISS       = 0x5A // module management
)

// Sub-commands of cmdISS.
const (
	issVersion = 0x01
	issMode    = 0x02
	issSerial  = 0x03
)

// moduleID is the identity byte every USB-ISS reports.
const moduleID = 0x07

// Direct mode opcodes. The read and write families span 16 opcodes each,
// one per byte count.
const (
	opStart   = 0x01
	opRestart = 0x02
	opStop    = 0x03
	opNack    = 0x04
	opRead1   = 0x20 // opRead1 + n - 1 reads n bytes, n <= 16
	opWrite1  = 0x30 // opWrite1 + n - 1 writes n bytes, n <= 16
)

// maxDirectBytes is the largest byte count a single direct mode read or
// write opcode can carry.
const maxDirectBytes = 16

// I2C operating modes of the bridge, keyed by bus clock in kHz. Hardware
// modes take precedence where both exist.
var (
	hardwareClockModes = map[int]byte{
		100:  0x60,
		400:  0x70,
		1000: 0x80,
	}
	softwareClockModes = map[int]byte{
		20:  0x20,
		50:  0x30,
		100: 0x40,
		400: 0x50,
	}
)

// ioAnalogueInput configures both spare pins as analogue inputs, two mode
// bits per pin.
const ioAnalogueInput = 0x0A
