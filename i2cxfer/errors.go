// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cxfer

import (
	"errors"
)

var (
	ErrNotConnected      = errors.New("not connected to a device")
	ErrInvalidAddress    = errors.New("invalid i2c device address")
	ErrInvalidEndianness = errors.New("invalid endianness")
	ErrInvalidMode       = errors.New("unsupported transfer mode")
	ErrChunkTooSmall     = errors.New("max bytes per transfer cannot fit a single word")
)
