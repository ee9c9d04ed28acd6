// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package eeprom24 exposes a 24Cxx style I2C EEPROM as a seekable file.
//
// Small 24Cxx parts map each 256 byte bank of the array onto a consecutive
// I2C device address and accept writes only up to the next page boundary,
// so a Dev splits file operations along both limits before handing them to
// the transaction engine.
package eeprom24

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

// bankSize is the span of one device address, fixed by the 8 bit register
// pointer of the part family.
const bankSize = 256

var (
	ErrInvalidConfig = errors.New("invalid eeprom geometry")
	ErrInvalidWhence = errors.New("invalid seek whence")
	ErrOutOfRange    = errors.New("seek position outside the array")
)

// Opts describes the geometry and timing of one EEPROM part.
type Opts struct {
	// Size is the array size in bytes.
	Size int
	// PageSize is the largest write that does not wrap inside the device.
	PageSize int
	// WriteDelay is the internal write cycle time waited after each page.
	WriteDelay time.Duration
}

// Opts24C02 describes the common 2 kbit part.
var Opts24C02 = Opts{Size: 256, PageSize: 8, WriteDelay: 5 * time.Millisecond}

// Dev is an EEPROM behind a transaction engine. It implements
// io.ReadWriteSeeker over the memory array.
type Dev struct {
	x    *i2cxfer.Dev
	addr uint16
	opts Opts
	pos  int
}

// New returns an EEPROM at the given base device address.
func New(x *i2cxfer.Dev, addr uint16, opts Opts) (*Dev, error) {
	if !regcodec.ValidI2CAddress(int(addr)) {
		return nil, fmt.Errorf("%w: %#04x", i2cxfer.ErrInvalidAddress, addr)
	}
	if opts.Size <= 0 || opts.PageSize <= 0 || opts.Size%opts.PageSize != 0 {
		return nil, fmt.Errorf("%w: size %d page %d", ErrInvalidConfig, opts.Size, opts.PageSize)
	}
	if opts.PageSize > bankSize || bankSize%opts.PageSize != 0 {
		return nil, fmt.Errorf("%w: page %d does not divide a bank", ErrInvalidConfig, opts.PageSize)
	}
	return &Dev{x: x, addr: addr, opts: opts}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("eeprom24{addr=%#04x size=%d}", d.addr, d.opts.Size)
}

// span returns the largest transfer at the current position that stays
// inside the array, the current bank and the cap.
func (d *Dev) span(want, cap int) int {
	n := want
	if left := d.opts.Size - d.pos; n > left {
		n = left
	}
	if left := bankSize - d.pos%bankSize; n > left {
		n = left
	}
	if n > cap {
		n = cap
	}
	return n
}

// Read fills b from the current position. It returns io.EOF once the end
// of the array is reached and no byte could be read.
func (d *Dev) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if d.pos >= d.opts.Size {
		return 0, io.EOF
	}
	total := 0
	for total < len(b) && d.pos < d.opts.Size {
		n := d.span(len(b)-total, d.opts.Size)
		bank := d.pos / bankSize
		words, err := d.x.ReadWords(d.addr+uint16(bank), uint32(d.pos%bankSize), n, i2cxfer.Reg8, i2cxfer.ModeNormal)
		if err != nil {
			return total, err
		}
		copy(b[total:], regcodec.WordsToBytes(words, 1, regcodec.Big))
		total += n
		d.pos += n
	}
	return total, nil
}

// Write stores b at the current position, one device page at a time,
// waiting out the write cycle after each page. A write reaching the end of
// the array stops there with io.EOF.
func (d *Dev) Write(b []byte) (int, error) {
	orig := len(b)
	for len(b) > 0 && d.pos < d.opts.Size {
		n := d.span(len(b), d.opts.PageSize-d.pos%d.opts.PageSize)
		bank := d.pos / bankSize
		words := regcodec.BytesToWords(b[:n], 1, regcodec.Big)
		if err := d.x.WriteWords(d.addr+uint16(bank), uint32(d.pos%bankSize), words, i2cxfer.Reg8, i2cxfer.ModeNormal); err != nil {
			return orig - len(b), err
		}
		if d.opts.WriteDelay > 0 {
			time.Sleep(d.opts.WriteDelay)
		}
		d.pos += n
		b = b[n:]
	}
	if len(b) > 0 {
		return orig - len(b), io.EOF
	}
	return orig, nil
}

// Seek moves the file position. Implements io.Seeker.
func (d *Dev) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(d.pos) + offset
	case io.SeekEnd:
		next = int64(d.opts.Size) + offset
	default:
		return int64(d.pos), ErrInvalidWhence
	}
	if next < 0 || next > int64(d.opts.Size) {
		return int64(d.pos), fmt.Errorf("%w: %d", ErrOutOfRange, next)
	}
	d.pos = int(next)
	return next, nil
}

var _ io.ReadWriteSeeker = &Dev{}
