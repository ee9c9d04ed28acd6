// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usbiss

import (
	"fmt"

	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

// Encode serializes an abstract bus phase sequence into the linear opcode
// buffer of the bridge's direct mode. The bridge executes the buffer left
// to right; a write opcode is followed inline by its data bytes.
//
// Read and write counts outside 1..16 have no opcode and fail with
// ErrCapacityExceeded; token kinds outside the known set fail with
// ErrUnknownOpcode. Nothing is emitted on failure.
func Encode(seq []i2cxfer.Token) ([]byte, error) {
	var buf []byte
	for _, tok := range seq {
		switch tok.Kind {
		case i2cxfer.KindStart:
			buf = append(buf, opStart)
		case i2cxfer.KindRestart:
			buf = append(buf, opRestart)
		case i2cxfer.KindStop:
			buf = append(buf, opStop)
		case i2cxfer.KindNack:
			buf = append(buf, opNack)
		case i2cxfer.KindRead:
			if tok.Count < 1 || tok.Count > maxDirectBytes {
				return nil, fmt.Errorf("%w: read of %d bytes", ErrCapacityExceeded, tok.Count)
			}
			buf = append(buf, byte(opRead1+tok.Count-1))
		case i2cxfer.KindWrite:
			if len(tok.Data) < 1 || len(tok.Data) > maxDirectBytes {
				return nil, fmt.Errorf("%w: write of %d bytes", ErrCapacityExceeded, len(tok.Data))
			}
			buf = append(buf, byte(opWrite1+len(tok.Data)-1))
			buf = append(buf, tok.Data...)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, tok.Kind)
		}
	}
	return buf, nil
}

// repeatedStartRead builds the token sequence that emulates an addressed
// register read with a repeated start: write the register pointer, restart,
// re-address with the read bit set, clock in n bytes and NACK the last one.
func repeatedStartRead(addr uint16, physReg uint32, regBits, n int) ([]i2cxfer.Token, error) {
	if n < 1 || n > maxDirectBytes {
		return nil, fmt.Errorf("%w: read of %d bytes", ErrCapacityExceeded, n)
	}

	devb := byte(addr << 1)
	var pointer i2cxfer.Token
	switch regBits {
	case 8:
		pointer = i2cxfer.Write(devb, byte(physReg))
	case 16:
		pointer = i2cxfer.Write(devb, byte(physReg>>8), byte(physReg))
	default:
		return nil, fmt.Errorf("%w: %d bits", regcodec.ErrUnsupportedWidth, regBits)
	}

	seq := []i2cxfer.Token{
		i2cxfer.Start(),
		pointer,
		i2cxfer.Restart(),
		i2cxfer.Write(devb | 0x01),
	}
	if n > 1 {
		seq = append(seq, i2cxfer.Read(n-1))
	}
	seq = append(seq, i2cxfer.Nack(), i2cxfer.Read(1), i2cxfer.Stop())
	return seq, nil
}
