// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usbiss

import (
	"fmt"
	"io"
	"sync"

	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

// Opts holds the configurable bridge parameters.
type Opts struct {
	// Clock is the I2C bus frequency in kHz. Valid values are 20, 50, 100,
	// 400 and 1000; where both a software and a hardware bit-banged mode
	// exist for a frequency, the hardware one is used. 0 selects 100 kHz.
	Clock int
}

// Dev is a connected USB-ISS bridge. It implements i2cxfer.Backend.
type Dev struct {
	port io.ReadWriteCloser
	mu   sync.Mutex

	clock     int
	hardware  bool
	fwVersion byte
	serial    string
}

// New performs the handshake with the bridge behind port: it verifies the
// module identity, records the firmware version and serial number, and
// configures the I2C operating mode. On success the returned Dev is
// connected and ready for transfers.
func New(port io.ReadWriteCloser, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	clock := opts.Clock
	if clock == 0 {
		clock = 100
	}
	mode, hardware := hardwareClockModes[clock], true
	if mode == 0 {
		mode, hardware = softwareClockModes[clock], false
	}
	if mode == 0 {
		return nil, fmt.Errorf("%w: %d kHz", ErrInvalidClock, clock)
	}

	d := &Dev{port: port, clock: clock, hardware: hardware}

	version, err := d.transact([]byte{cmdISS, issVersion}, 3)
	if err != nil {
		return nil, err
	}
	if version[0] != moduleID {
		return nil, fmt.Errorf("%w: %#02x", ErrUnknownModule, version[0])
	}
	d.fwVersion = version[1]

	serial, err := d.transact([]byte{cmdISS, issSerial}, 8)
	if err != nil {
		return nil, err
	}
	d.serial = string(serial)

	ack, err := d.transact([]byte{cmdISS, issMode, mode, ioAnalogueInput}, 2)
	if err != nil {
		return nil, err
	}
	if ack[0] == 0 {
		return nil, fmt.Errorf("%w: code %#02x", ErrSetupFailed, ack[1])
	}

	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("usbiss{fw=%#02x serial=%s clock=%dkHz}", d.fwVersion, d.serial, d.clock)
}

// FirmwareVersion returns the firmware version reported by the bridge.
func (d *Dev) FirmwareVersion() byte {
	return d.fwVersion
}

// Serial returns the serial number reported by the bridge.
func (d *Dev) Serial() string {
	return d.serial
}

// Clock returns the configured I2C bus frequency in kHz.
func (d *Dev) Clock() int {
	return d.clock
}

// Hardware reports whether the bridge runs the bus from its hardware I2C
// peripheral rather than bit-banging it.
func (d *Dev) Hardware() bool {
	return d.hardware
}

// Close releases the underlying serial stream.
func (d *Dev) Close() error {
	return d.port.Close()
}

// transact writes one command and reads back exactly n response bytes.
func (d *Dev) transact(cmd []byte, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.port.Write(cmd); err != nil {
		return nil, err
	}
	resp := make([]byte, n)
	if _, err := io.ReadFull(d.port, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Probe reports whether a device acknowledges at addr.
func (d *Dev) Probe(addr uint16) bool {
	resp, err := d.transact([]byte{cmdI2CTest, byte(addr << 1)}, 1)
	if err != nil {
		return false
	}
	return resp[0] != 0
}

// frameAD builds the command prefix for a native addressed transfer: the
// AD1 or AD2 command is chosen by the register address width.
func frameAD(rw byte, addr uint16, physReg uint32, regBits int) ([]byte, error) {
	devb := byte(addr<<1) | rw
	switch regBits {
	case 8:
		return []byte{cmdI2CAD1, devb, byte(physReg)}, nil
	case 16:
		return []byte{cmdI2CAD2, devb, byte(physReg >> 8), byte(physReg)}, nil
	}
	return nil, fmt.Errorf("%w: %d bits", regcodec.ErrUnsupportedWidth, regBits)
}

// WriteBlock writes p starting at physReg using the bridge's native
// addressed write. Only ModeNormal is supported for writes.
func (d *Dev) WriteBlock(addr uint16, physReg uint32, regBits int, p []byte, mode i2cxfer.Mode) error {
	if mode != i2cxfer.ModeNormal {
		return fmt.Errorf("%w: %s write", i2cxfer.ErrInvalidMode, mode)
	}
	if len(p) > 0xFF {
		return fmt.Errorf("%w: write of %d bytes", ErrCapacityExceeded, len(p))
	}
	cmd, err := frameAD(0, addr, physReg, regBits)
	if err != nil {
		return err
	}
	cmd = append(cmd, byte(len(p)))
	cmd = append(cmd, p...)

	resp, err := d.transact(cmd, 1)
	if err != nil {
		return err
	}
	if resp[0] == 0 {
		return fmt.Errorf("%w: device %#04x register %#x", ErrNack, addr, physReg)
	}
	return nil
}

// ReadBlock reads n bytes starting at physReg. ModeNormal uses the native
// addressed read; ModeRepeatedStart is emulated from direct mode
// primitives and is limited to 16 bytes per call.
func (d *Dev) ReadBlock(addr uint16, physReg uint32, regBits int, n int, mode i2cxfer.Mode) ([]byte, error) {
	switch mode {
	case i2cxfer.ModeNormal:
		if n > 0xFF {
			return nil, fmt.Errorf("%w: read of %d bytes", ErrCapacityExceeded, n)
		}
		cmd, err := frameAD(1, addr, physReg, regBits)
		if err != nil {
			return nil, err
		}
		return d.transact(append(cmd, byte(n)), n)
	case i2cxfer.ModeRepeatedStart:
		seq, err := repeatedStartRead(addr, physReg, regBits, n)
		if err != nil {
			return nil, err
		}
		p, err := d.Execute(seq)
		if err != nil {
			return nil, err
		}
		if len(p) != n {
			return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, len(p), n)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s read", i2cxfer.ErrInvalidMode, mode)
}

// Execute encodes seq and runs it through the bridge's direct mode,
// returning the bytes its read phases produced.
func (d *Dev) Execute(seq []i2cxfer.Token) ([]byte, error) {
	buf, err := Encode(seq)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.port.Write(append([]byte{cmdI2CDirect}, buf...)); err != nil {
		return nil, err
	}
	header := make([]byte, 2)
	if _, err := io.ReadFull(d.port, header); err != nil {
		return nil, err
	}
	if header[0] == 0 {
		return nil, fmt.Errorf("%w: code %#02x", ErrDirectFailed, header[1])
	}
	p := make([]byte, header[1])
	if _, err := io.ReadFull(d.port, p); err != nil {
		return nil, err
	}
	return p, nil
}

var _ i2cxfer.Backend = &Dev{}
