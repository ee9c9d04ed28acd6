// Copyright 2025 The I2CBridge Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2cbus_test

import (
	"log"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/daqio/i2cbridge/i2cbus"
	"github.com/daqio/i2cbridge/i2cxfer"
	"github.com/daqio/i2cbridge/regcodec"
)

func Example() {
	// Initializes host to manage bus and devices
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Opens default bus
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}

	// The engine owns the bus from here; Close releases it.
	dev, err := i2cxfer.New(i2cbus.New(bus), &i2cxfer.Opts{MaxSeqBytes: 32})
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Close()

	// Read a block of 16 bit big endian registers from the device at 0x21.
	lay := i2cxfer.Layout{
		AddrBits:  8,
		AddrOrder: regcodec.Big,
		WordBits:  16,
		WordOrder: regcodec.Big,
	}
	words, err := dev.ReadWords(0x21, 0x00, 64, lay, i2cxfer.ModeNormal)
	if err != nil {
		log.Fatal(err)
	}
	for i, w := range words {
		log.Printf("reg %#02x = %#04x", i, w)
	}
}
