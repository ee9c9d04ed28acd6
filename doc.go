// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cbridge is a container for register-oriented I2C transaction
// packages.
//
// regcodec holds the endianness and word packing arithmetic, i2cxfer the
// transport-agnostic chunked transaction engine, usbiss a client for the
// USB-ISS serial to I2C bridge, i2cbus an adapter onto periph.io buses and
// eeprom24 a file-like EEPROM driver built on top of the engine.
package i2cbridge
