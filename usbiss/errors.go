// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usbiss

import (
	"errors"
)

var (
	ErrUnknownModule    = errors.New("unexpected module id")
	ErrInvalidClock     = errors.New("invalid i2c clock frequency")
	ErrUnknownOpcode    = errors.New("unknown opcode token")
	ErrCapacityExceeded = errors.New("byte count exceeds direct mode opcode capacity")
	ErrShortRead        = errors.New("device returned fewer bytes than requested")
	ErrNack             = errors.New("device did not acknowledge")
	ErrDirectFailed     = errors.New("direct command rejected by bridge")
	ErrSetupFailed      = errors.New("bridge refused i2c mode setup")
)
