// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cxfer issues register block transactions larger than a
// transport's single-transfer capacity.
//
// A Dev splits each word block read or write into bounded sub-transfers,
// paces them with a configurable delay and delegates each one to a Backend.
// Word and address byte order handling is delegated to regcodec.
//
// A Dev is exclusively owned by its caller: concurrent calls against the
// same Dev need external synchronization. There is no cancellation; a
// transfer runs to completion or to the first backend error.
package i2cxfer

import (
	"fmt"
	"log"
	"time"

	"github.com/daqio/i2cbridge/regcodec"
)

// In emulation mode a single word read returns this value.
const emulatedWord = 42

// Layout describes how registers of a device are addressed and sized.
type Layout struct {
	AddrBits  int
	AddrOrder regcodec.ByteOrder
	WordBits  int
	WordOrder regcodec.ByteOrder
}

// Reg8 is the common case of 8-bit registers with 8-bit addresses.
var Reg8 = Layout{AddrBits: 8, AddrOrder: regcodec.Big, WordBits: 8, WordOrder: regcodec.Big}

// Opts holds the transfer limits of the transport and engine behavior.
type Opts struct {
	// MaxSeqBytes caps the payload of one backend call. 0 means no limit:
	// the whole transaction goes out in a single call.
	MaxSeqBytes int
	// Delay is the pause between consecutive sub-transfers. It is not
	// applied before the first or after the last one.
	Delay time.Duration
	// Emulate bypasses the backend entirely: reads return deterministic
	// synthetic data and writes are no-ops. For hardware-less testing.
	Emulate bool
	// Progress, if set, is called once per completed sub-transfer. It has
	// no effect on control flow.
	Progress func(done, total int)
	// Logger receives a per-chunk debug trace. Nil disables it.
	Logger *log.Logger
}

// Dev is a chunked transaction engine bound to one backend.
type Dev struct {
	be        Backend
	opts      Opts
	connected bool
}

// New returns an engine over be. The backend's constructor is expected to
// have performed the physical handshake already; the returned Dev starts
// connected. be may only be nil when opts.Emulate is set.
func New(be Backend, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if be == nil && !opts.Emulate {
		return nil, ErrNotConnected
	}
	return &Dev{be: be, opts: *opts, connected: true}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("i2cxfer{maxseq=%d delay=%s}", d.opts.MaxSeqBytes, d.opts.Delay)
}

// Connected reports whether the engine may issue transfers.
func (d *Dev) Connected() bool {
	return d.connected
}

// Close disconnects the engine and releases the backend transport.
func (d *Dev) Close() error {
	if !d.connected {
		return ErrNotConnected
	}
	d.connected = false
	if d.be == nil {
		return nil
	}
	return d.be.Close()
}

// Probe reports whether a device answers at addr. It returns false when
// disconnected or emulating, and never fails.
func (d *Dev) Probe(addr uint16) bool {
	if !d.connected || d.opts.Emulate {
		d.logf("cannot probe %#04x: no transport attached", addr)
		return false
	}
	if !regcodec.ValidI2CAddress(int(addr)) {
		return false
	}
	return d.be.Probe(addr)
}

func (d *Dev) logf(format string, args ...interface{}) {
	if d.opts.Logger != nil {
		d.opts.Logger.Printf(format, args...)
	}
}

// checkTransaction validates the per-call preconditions shared by reads and
// writes. Every failure is reported before any backend call is made.
func (d *Dev) checkTransaction(addr uint16, lay Layout, mode Mode, write bool) error {
	if !d.connected {
		return ErrNotConnected
	}
	if !regcodec.ValidI2CAddress(int(addr)) {
		return fmt.Errorf("%w: %#04x", ErrInvalidAddress, addr)
	}
	if !lay.AddrOrder.Valid() {
		return fmt.Errorf("%w: address order %d", ErrInvalidEndianness, lay.AddrOrder)
	}
	if !lay.WordOrder.Valid() {
		return fmt.Errorf("%w: word order %d", ErrInvalidEndianness, lay.WordOrder)
	}
	if write {
		if mode != ModeNormal {
			return fmt.Errorf("%w: %s write", ErrInvalidMode, mode)
		}
	} else if mode != ModeNormal && mode != ModeRepeatedStart {
		return fmt.Errorf("%w: %s read", ErrInvalidMode, mode)
	}
	return nil
}

// ReadWords reads count words starting at register reg of the device at
// addr and returns them decoded per lay.
func (d *Dev) ReadWords(addr uint16, reg uint32, count int, lay Layout, mode Mode) ([]uint32, error) {
	if err := d.checkTransaction(addr, lay, mode, false); err != nil {
		return nil, err
	}
	wordBytes := (lay.WordBits + 7) / 8

	d.logf("reading %d words from register %#x of device %#04x", count, reg, addr)

	if d.opts.Emulate {
		raw := emulatedRead(count, wordBytes, lay.WordOrder)
		d.logf("emulation enabled, returning synthetic values: % X", raw)
		return regcodec.BytesToWords(raw, wordBytes, lay.WordOrder), nil
	}

	if d.opts.MaxSeqBytes == 0 {
		phys, err := regcodec.AddressToPhys(reg, lay.AddrBits, lay.AddrOrder)
		if err != nil {
			return nil, err
		}
		raw, err := d.be.ReadBlock(addr, phys, lay.AddrBits, count*wordBytes, mode)
		if err != nil {
			return nil, err
		}
		return regcodec.BytesToWords(raw, wordBytes, lay.WordOrder), nil
	}

	wordsPerCall := d.opts.MaxSeqBytes / wordBytes
	if wordsPerCall == 0 {
		return nil, ErrChunkTooSmall
	}
	calls := (count + wordsPerCall - 1) / wordsPerCall
	d.logf("breaking the read into %d transfers of up to %d words", calls, wordsPerCall)

	raw := make([]byte, 0, count*wordBytes)
	for i := 0; i < calls; i++ {
		if i > 0 && d.opts.Delay > 0 {
			time.Sleep(d.opts.Delay)
		}

		blockReg := reg + uint32(i*wordsPerCall)
		blockWords := wordsPerCall
		if rem := count - i*wordsPerCall; rem < blockWords {
			blockWords = rem
		}
		d.logf("read %d: %d words starting from %#x", i, blockWords, blockReg)

		phys, err := regcodec.AddressToPhys(blockReg, lay.AddrBits, lay.AddrOrder)
		if err != nil {
			return nil, err
		}
		p, err := d.be.ReadBlock(addr, phys, lay.AddrBits, blockWords*wordBytes, mode)
		if err != nil {
			return nil, err
		}
		raw = append(raw, p...)

		if d.opts.Progress != nil {
			d.opts.Progress(i+1, calls)
		}
	}
	return regcodec.BytesToWords(raw, wordBytes, lay.WordOrder), nil
}

// WriteWords writes words starting at register reg of the device at addr,
// encoded per lay.
func (d *Dev) WriteWords(addr uint16, reg uint32, words []uint32, lay Layout, mode Mode) error {
	if err := d.checkTransaction(addr, lay, mode, true); err != nil {
		return err
	}
	wordBytes := (lay.WordBits + 7) / 8
	count := len(words)

	d.logf("writing %d words to register %#x of device %#04x", count, reg, addr)

	if d.opts.Emulate {
		d.logf("emulation enabled, no write action taken")
		return nil
	}

	if d.opts.MaxSeqBytes == 0 {
		phys, err := regcodec.AddressToPhys(reg, lay.AddrBits, lay.AddrOrder)
		if err != nil {
			return err
		}
		return d.be.WriteBlock(addr, phys, lay.AddrBits, regcodec.WordsToBytes(words, wordBytes, lay.WordOrder), mode)
	}

	wordsPerCall := d.opts.MaxSeqBytes / wordBytes
	if wordsPerCall == 0 {
		return ErrChunkTooSmall
	}
	calls := (count + wordsPerCall - 1) / wordsPerCall
	d.logf("breaking the write into %d transfers of up to %d words", calls, wordsPerCall)

	for i := 0; i < calls; i++ {
		if i > 0 && d.opts.Delay > 0 {
			time.Sleep(d.opts.Delay)
		}

		blockReg := reg + uint32(i*wordsPerCall)
		blockWords := wordsPerCall
		if rem := count - i*wordsPerCall; rem < blockWords {
			blockWords = rem
		}
		block := words[i*wordsPerCall : i*wordsPerCall+blockWords]
		d.logf("write %d: %d words starting from %#x", i, blockWords, blockReg)

		phys, err := regcodec.AddressToPhys(blockReg, lay.AddrBits, lay.AddrOrder)
		if err != nil {
			return err
		}
		if err := d.be.WriteBlock(addr, phys, lay.AddrBits, regcodec.WordsToBytes(block, wordBytes, lay.WordOrder), mode); err != nil {
			return err
		}

		if d.opts.Progress != nil {
			d.opts.Progress(i+1, calls)
		}
	}
	return nil
}

// emulatedRead builds the synthetic byte stream returned in emulation mode:
// a lone 1-byte word is 42, a lone wider word is 42 with the remaining
// bytes zero, and a multi-word read is the sequence 0,1,2,...
func emulatedRead(count, wordBytes int, o regcodec.ByteOrder) []byte {
	if count == 1 {
		raw := make([]byte, wordBytes)
		if o == regcodec.Little {
			raw[0] = emulatedWord
		} else {
			raw[wordBytes-1] = emulatedWord
		}
		return raw
	}
	raw := make([]byte, count*wordBytes)
	for i := range raw {
		raw[i] = byte(i)
	}
	return raw
}
