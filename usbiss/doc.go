// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package usbiss drives a Devantech USB-ISS serial to I2C bridge.
//
// The bridge is addressed over a byte stream, typically a USB CDC serial
// port, which the caller opens and injects as an io.ReadWriteCloser. Dev
// implements i2cxfer.Backend: register blocks go out through the native
// one and two byte addressed commands (I2C_AD1/I2C_AD2) and arbitrary bus
// phase sequences through the direct command (I2C_DIRECT), for which this
// package also provides the opcode encoder.
//
// The bridge has no native combined write-then-read instruction, so
// repeated start reads are emulated from direct mode primitives. The
// direct read opcodes top out at 16 bytes per transaction; use the
// i2cxfer chunking engine to move larger blocks.
package usbiss
