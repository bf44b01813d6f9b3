// go-rf230
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rf230.
//
// go-rf230 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rf230 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rf230; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

//go:build linux

package spi

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	rf230 "github.com/ZaparooProject/go-rf230"
)

const probeFrequency = 1 * physic.MegaHertz

func checkAccess(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return fmt.Errorf("access %s: %w", path, err)
	}
	return nil
}

// probePartNumber reads PART_NUM using the kernel driven chip select
func probePartNumber(ctx context.Context, path string) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := host.Init(); err != nil {
		return 0, fmt.Errorf("init host: %w", err)
	}

	port, err := spireg.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = port.Close() }()

	conn, err := port.Connect(probeFrequency, spi.Mode0, 8)
	if err != nil {
		return 0, fmt.Errorf("connect %s: %w", path, err)
	}

	w := []byte{rf230.RegPartNum.ReadCommand(), 0x00}
	r := make([]byte, len(w))
	if err := conn.Tx(w, r); err != nil {
		return 0, fmt.Errorf("read PART_NUM on %s: %w", path, err)
	}
	return r[1], nil
}
