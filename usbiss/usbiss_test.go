// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usbiss

import (
	"bytes"
	"errors"
	"testing"

	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

// exchange is one scripted command/response pair on the serial stream.
type exchange struct {
	w []byte
	r []byte
}

// scriptPort plays back a fixed transcript of serial exchanges.
type scriptPort struct {
	t      *testing.T
	script []exchange
	rd     bytes.Buffer
	closed bool
}

func (s *scriptPort) Write(p []byte) (int, error) {
	if len(s.script) == 0 {
		s.t.Fatalf("unexpected write % X", p)
	}
	e := s.script[0]
	s.script = s.script[1:]
	if !bytes.Equal(p, e.w) {
		s.t.Fatalf("wrote % X, want % X", p, e.w)
	}
	s.rd.Write(e.r)
	return len(p), nil
}

func (s *scriptPort) Read(p []byte) (int, error) {
	return s.rd.Read(p)
}

func (s *scriptPort) Close() error {
	s.closed = true
	return nil
}

func (s *scriptPort) done() bool {
	return len(s.script) == 0 && s.rd.Len() == 0
}

// handshake returns the transcript New produces for the given mode byte.
func handshake(mode byte) []exchange {
	return []exchange{
		{w: []byte{cmdISS, issVersion}, r: []byte{moduleID, 0x09, 0x40}},
		{w: []byte{cmdISS, issSerial}, r: []byte("00000078")},
		{w: []byte{cmdISS, issMode, mode, ioAnalogueInput}, r: []byte{0xFF, 0x00}},
	}
}

func newBridge(t *testing.T, script []exchange, opts *Opts) (*Dev, *scriptPort) {
	port := &scriptPort{t: t, script: script}
	d, err := New(port, opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d, port
}

func TestNewHandshake(t *testing.T) {
	// 100 kHz has both a software and a hardware mode; hardware wins.
	d, port := newBridge(t, handshake(0x60), nil)
	if !port.done() {
		t.Error("handshake left unconsumed transcript")
	}
	if d.FirmwareVersion() != 0x09 {
		t.Errorf("FirmwareVersion() = %#02x, want 0x09", d.FirmwareVersion())
	}
	if d.Serial() != "00000078" {
		t.Errorf("Serial() = %q, want 00000078", d.Serial())
	}
	if err := d.Close(); err != nil || !port.closed {
		t.Errorf("Close() = %v, port closed %v", err, port.closed)
	}
}

func TestNewSoftwareClock(t *testing.T) {
	_, port := newBridge(t, handshake(0x20), &Opts{Clock: 20})
	if !port.done() {
		t.Error("handshake left unconsumed transcript")
	}
}

func TestNewRejectsWrongModuleID(t *testing.T) {
	port := &scriptPort{t: t, script: []exchange{
		{w: []byte{cmdISS, issVersion}, r: []byte{0x12, 0x09, 0x40}},
	}}
	if _, err := New(port, nil); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("New() error = %v, want ErrUnknownModule", err)
	}
}

func TestNewRejectsInvalidClock(t *testing.T) {
	port := &scriptPort{t: t}
	if _, err := New(port, &Opts{Clock: 123}); !errors.Is(err, ErrInvalidClock) {
		t.Errorf("New() error = %v, want ErrInvalidClock", err)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		seq  []i2cxfer.Token
		want []byte
	}{
		{
			"write2 stop",
			[]i2cxfer.Token{i2cxfer.Write(0xAA, 0xBB), i2cxfer.Stop()},
			[]byte{0x31, 0xAA, 0xBB, 0x03},
		},
		{
			"all bare opcodes",
			[]i2cxfer.Token{i2cxfer.Start(), i2cxfer.Restart(), i2cxfer.Nack(), i2cxfer.Stop()},
			[]byte{0x01, 0x02, 0x04, 0x03},
		},
		{
			"read counts",
			[]i2cxfer.Token{i2cxfer.Read(1), i2cxfer.Read(16)},
			[]byte{0x20, 0x2F},
		},
		{
			"write16",
			[]i2cxfer.Token{i2cxfer.Write(bytes.Repeat([]byte{0x55}, 16)...)},
			append([]byte{0x3F}, bytes.Repeat([]byte{0x55}, 16)...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.seq)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		seq  []i2cxfer.Token
		want error
	}{
		{"unknown kind", []i2cxfer.Token{{Kind: i2cxfer.TokenKind(0x7F)}}, ErrUnknownOpcode},
		{"empty write", []i2cxfer.Token{i2cxfer.Write()}, ErrCapacityExceeded},
		{"oversized write", []i2cxfer.Token{i2cxfer.Write(make([]byte, 17)...)}, ErrCapacityExceeded},
		{"zero read", []i2cxfer.Token{i2cxfer.Read(0)}, ErrCapacityExceeded},
		{"oversized read", []i2cxfer.Token{i2cxfer.Read(17)}, ErrCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.seq); !errors.Is(err, tt.want) {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	script := append(handshake(0x60),
		exchange{w: []byte{cmdI2CTest, 0x42}, r: []byte{0xFF}},
		exchange{w: []byte{cmdI2CTest, 0x44}, r: []byte{0x00}},
	)
	d, _ := newBridge(t, script, nil)
	if !d.Probe(0x21) {
		t.Error("Probe(0x21) = false, want true")
	}
	if d.Probe(0x22) {
		t.Error("Probe(0x22) = true, want false")
	}
}

func TestWriteBlock(t *testing.T) {
	script := append(handshake(0x60),
		exchange{w: []byte{cmdI2CAD1, 0x42, 0x10, 0x02, 0xAA, 0xBB}, r: []byte{0x01}},
		exchange{w: []byte{cmdI2CAD2, 0x42, 0x13, 0x21, 0x01, 0xCC}, r: []byte{0x01}},
		exchange{w: []byte{cmdI2CAD1, 0x42, 0x10, 0x01, 0xDD}, r: []byte{0x00}},
	)
	d, port := newBridge(t, script, nil)

	if err := d.WriteBlock(0x21, 0x10, 8, []byte{0xAA, 0xBB}, i2cxfer.ModeNormal); err != nil {
		t.Fatalf("8 bit WriteBlock failed: %v", err)
	}
	// 16 bit register 0x2113 already swapped to its physical little endian
	// form upstream.
	if err := d.WriteBlock(0x21, 0x1321, 16, []byte{0xCC}, i2cxfer.ModeNormal); err != nil {
		t.Fatalf("16 bit WriteBlock failed: %v", err)
	}
	if err := d.WriteBlock(0x21, 0x10, 8, []byte{0xDD}, i2cxfer.ModeNormal); !errors.Is(err, ErrNack) {
		t.Errorf("nacked WriteBlock error = %v, want ErrNack", err)
	}
	if !port.done() {
		t.Error("unconsumed transcript")
	}
}

func TestWriteBlockRejectsBadArguments(t *testing.T) {
	d, _ := newBridge(t, handshake(0x60), nil)
	if err := d.WriteBlock(0x21, 0x10, 24, []byte{0x01}, i2cxfer.ModeNormal); !errors.Is(err, regcodec.ErrUnsupportedWidth) {
		t.Errorf("24 bit register error = %v, want ErrUnsupportedWidth", err)
	}
	if err := d.WriteBlock(0x21, 0x10, 8, []byte{0x01}, i2cxfer.ModeRepeatedStart); !errors.Is(err, i2cxfer.ErrInvalidMode) {
		t.Errorf("repeated start write error = %v, want ErrInvalidMode", err)
	}
}

func TestReadBlockNormal(t *testing.T) {
	script := append(handshake(0x60),
		exchange{w: []byte{cmdI2CAD1, 0x43, 0x10, 0x03}, r: []byte{0x12, 0x34, 0x56}},
		exchange{w: []byte{cmdI2CAD2, 0x43, 0x21, 0x13, 0x01}, r: []byte{0x78}},
	)
	d, port := newBridge(t, script, nil)

	got, err := d.ReadBlock(0x21, 0x10, 8, 3, i2cxfer.ModeNormal)
	if err != nil {
		t.Fatalf("8 bit ReadBlock failed: %v", err)
	}
	if want := []byte{0x12, 0x34, 0x56}; !bytes.Equal(got, want) {
		t.Errorf("ReadBlock = % X, want % X", got, want)
	}
	got, err = d.ReadBlock(0x21, 0x2113, 16, 1, i2cxfer.ModeNormal)
	if err != nil {
		t.Fatalf("16 bit ReadBlock failed: %v", err)
	}
	if want := []byte{0x78}; !bytes.Equal(got, want) {
		t.Errorf("ReadBlock = % X, want % X", got, want)
	}
	if !port.done() {
		t.Error("unconsumed transcript")
	}
}

func TestReadBlockRepeatedStart(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i + 1)
	}
	// START, WRITE2 devb reg, RESTART, WRITE1 devb|1, READ15, NACK, READ1, STOP.
	direct := []byte{cmdI2CDirect, 0x01, 0x31, 0x42, 0x10, 0x02, 0x30, 0x43, 0x2E, 0x04, 0x20, 0x03}
	script := append(handshake(0x60),
		exchange{w: direct, r: append([]byte{0xFF, 16}, data...)},
	)
	d, port := newBridge(t, script, nil)

	got, err := d.ReadBlock(0x21, 0x10, 8, 16, i2cxfer.ModeRepeatedStart)
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadBlock = % X, want % X", got, data)
	}
	if !port.done() {
		t.Error("unconsumed transcript")
	}
}

func TestReadBlockRepeatedStartSingleByte(t *testing.T) {
	// A 1 byte read carries no counted READ opcode before the NACK.
	direct := []byte{cmdI2CDirect, 0x01, 0x32, 0x42, 0x21, 0x13, 0x02, 0x30, 0x43, 0x04, 0x20, 0x03}
	script := append(handshake(0x60),
		exchange{w: direct, r: []byte{0xFF, 0x01, 0x9A}},
	)
	d, _ := newBridge(t, script, nil)

	got, err := d.ReadBlock(0x21, 0x2113, 16, 1, i2cxfer.ModeRepeatedStart)
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if want := []byte{0x9A}; !bytes.Equal(got, want) {
		t.Errorf("ReadBlock = % X, want % X", got, want)
	}
}

func TestReadBlockRepeatedStartCapacity(t *testing.T) {
	d, port := newBridge(t, handshake(0x60), nil)
	if _, err := d.ReadBlock(0x21, 0x10, 8, 17, i2cxfer.ModeRepeatedStart); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("17 byte read error = %v, want ErrCapacityExceeded", err)
	}
	if !port.done() {
		t.Error("capacity check reached the transport")
	}
}

func TestReadBlockRepeatedStartShortRead(t *testing.T) {
	direct := []byte{cmdI2CDirect, 0x01, 0x31, 0x42, 0x10, 0x02, 0x30, 0x43, 0x21, 0x04, 0x20, 0x03}
	script := append(handshake(0x60),
		exchange{w: direct, r: []byte{0xFF, 0x01, 0x12}},
	)
	d, _ := newBridge(t, script, nil)
	if _, err := d.ReadBlock(0x21, 0x10, 8, 3, i2cxfer.ModeRepeatedStart); !errors.Is(err, ErrShortRead) {
		t.Errorf("short read error = %v, want ErrShortRead", err)
	}
}

func TestExecuteDirectFailure(t *testing.T) {
	script := append(handshake(0x60),
		exchange{w: []byte{cmdI2CDirect, 0x01, 0x03}, r: []byte{0x00, 0x05}},
	)
	d, _ := newBridge(t, script, nil)
	_, err := d.Execute([]i2cxfer.Token{i2cxfer.Start(), i2cxfer.Stop()})
	if !errors.Is(err, ErrDirectFailed) {
		t.Errorf("Execute error = %v, want ErrDirectFailed", err)
	}
}
