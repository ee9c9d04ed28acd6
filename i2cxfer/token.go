// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cxfer

import "fmt"

// TokenKind tags one abstract I2C bus phase.
type TokenKind uint8

const (
	KindStart TokenKind = iota
	KindRestart
	KindStop
	KindNack
	KindRead
	KindWrite
)

var tokenKindToStringMap = map[TokenKind]string{
	KindStart:   "START",
	KindRestart: "RESTART",
	KindStop:    "STOP",
	KindNack:    "NACK",
	KindRead:    "READ",
	KindWrite:   "WRITE",
}

func (k TokenKind) String() string {
	if v, ok := tokenKindToStringMap[k]; ok {
		return v
	}
	return "unknown"
}

// Token is one abstract I2C primitive operation. A Write token carries its
// data bytes directly, so a token sequence cannot under-run the way a flat
// positional stream can. Read tokens carry the byte count to clock in.
type Token struct {
	Kind  TokenKind
	Count int    // KindRead only
	Data  []byte // KindWrite only
}

func (t Token) String() string {
	switch t.Kind {
	case KindRead:
		return fmt.Sprintf("READ%d", t.Count)
	case KindWrite:
		return fmt.Sprintf("WRITE%d % X", len(t.Data), t.Data)
	}
	return t.Kind.String()
}

// Start returns a bus start condition token.
func Start() Token { return Token{Kind: KindStart} }

// Restart returns a repeated start condition token.
func Restart() Token { return Token{Kind: KindRestart} }

// Stop returns a bus stop condition token.
func Stop() Token { return Token{Kind: KindStop} }

// Nack returns a token that NACKs the next byte read.
func Nack() Token { return Token{Kind: KindNack} }

// Read returns a token that clocks in n bytes, ACKing each one.
func Read(n int) Token { return Token{Kind: KindRead, Count: n} }

// Write returns a token that clocks out the given bytes.
func Write(p ...byte) Token { return Token{Kind: KindWrite, Data: p} }
