// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package regcodec converts between logical register words and the raw byte
// stream an I2C transport moves.
//
// Register words have a configurable byte width and byte order; register
// addresses additionally need to be rewritten to their physical on-wire
// form before a transport will accept them. All functions here are pure.
package regcodec

import (
	"errors"
	"fmt"
)

// ByteOrder selects the byte order of a multi-byte register word or address.
type ByteOrder uint8

const (
	Big ByteOrder = iota
	Little
)

var byteOrderToStringMap = map[ByteOrder]string{
	Big:    "big",
	Little: "little",
}

func (o ByteOrder) String() string {
	if v, ok := byteOrderToStringMap[o]; ok {
		return v
	}
	return "unknown"
}

// Valid reports whether o is one of the two defined byte orders.
func (o ByteOrder) Valid() bool {
	return o == Big || o == Little
}

// ErrUnsupportedWidth is returned for register address widths that have no
// physical encoding.
var ErrUnsupportedWidth = errors.New("unsupported register address width")

// SwapEndian16 returns v byte-swapped as a 16-bit quantity. Inputs wider
// than 16 bits are truncated, not rejected.
func SwapEndian16(v uint32) uint32 {
	v &= 0xFFFF
	return (v >> 8) | ((v & 0xFF) << 8)
}

// SwapEndian32 returns v byte-swapped as a 32-bit quantity. Inputs wider
// than 32 bits are truncated, not rejected.
func SwapEndian32(v uint64) uint64 {
	v &= 0xFFFFFFFF
	return (v >> 24) | ((v & 0xFF0000) >> 8) | ((v & 0xFF00) << 8) | ((v & 0xFF) << 24)
}

// ValidI2CAddress reports whether v is a usable 7-bit I2C device address.
func ValidI2CAddress(v int) bool {
	return v >= 0 && v <= 127
}

// AddressToPhys returns the physical on-wire form of a register address.
//
// Big endian addresses are sent as-is. Little endian addresses are
// byte-swapped for 16 and 32 bit widths and unchanged for 8 bit; any other
// width has no little endian encoding and fails with ErrUnsupportedWidth.
func AddressToPhys(addr uint32, bits int, o ByteOrder) (uint32, error) {
	if o != Little {
		return addr, nil
	}
	switch bits {
	case 8:
		return addr, nil
	case 16:
		return SwapEndian16(addr), nil
	case 32:
		return uint32(SwapEndian32(uint64(addr))), nil
	}
	return 0, fmt.Errorf("%w: %d bits", ErrUnsupportedWidth, bits)
}

// WordsToBytes flattens words of wordBytes bytes each into a byte stream,
// most significant byte first for Big, least significant first for Little.
// 1-byte words pass through unchanged.
func WordsToBytes(words []uint32, wordBytes int, o ByteOrder) []byte {
	p := make([]byte, 0, len(words)*wordBytes)
	for _, w := range words {
		if o == Little {
			for i := 0; i < wordBytes; i++ {
				p = append(p, byte(w>>(8*i)))
			}
		} else {
			for i := wordBytes - 1; i >= 0; i-- {
				p = append(p, byte(w>>(8*i)))
			}
		}
	}
	return p
}

// BytesToWords is the inverse of WordsToBytes. It consumes p in consecutive
// groups of wordBytes; a trailing partial group is dropped.
func BytesToWords(p []byte, wordBytes int, o ByteOrder) []uint32 {
	n := len(p) / wordBytes
	words := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		var w uint32
		g := p[i*wordBytes : (i+1)*wordBytes]
		if o == Little {
			for j := wordBytes - 1; j >= 0; j-- {
				w = w<<8 | uint32(g[j])
			}
		} else {
			for j := 0; j < wordBytes; j++ {
				w = w<<8 | uint32(g[j])
			}
		}
		words = append(words, w)
	}
	return words
}
