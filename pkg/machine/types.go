// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"bufio"
)

// Opcode is the 4-bit instruction class selector in bits [15:12].
type Opcode uint16

// TrapVector selects an I/O routine from the low 8 bits of a TRAP
// instruction.
type TrapVector uint16

// Status is the lifecycle state of a Machine. The zero value is
// STATUS_RUNNING so a freshly loaded machine can step immediately.
// STATUS_HALTED and STATUS_FAULTED are terminal.
type Status int

const (
	STATUS_RUNNING Status = iota
	STATUS_HALTED
	STATUS_FAULTED
)

func (s Status) String() string {
	switch s {
	case STATUS_RUNNING:
		return "RUNNING"
	case STATUS_HALTED:
		return "HALTED"
	case STATUS_FAULTED:
		return "FAULTED"
	}

	return "UNKNOWN"
}

// TerminalInput supplies single raw characters to the GETC and IN traps.
// Implementations own the terminal mode switch: line buffering and local
// echo are disabled for the duration of each read and restored afterwards,
// on every exit path.
type TerminalInput interface {
	ReadRawByte() (byte, error)
}

// DeviceHandler connects the machine's trap surface to a terminal.
type DeviceHandler struct {
	Keyboard TerminalInput
	Display  *bufio.Writer

	// midline tracks whether the last character written left the cursor
	// past column 0, so prompts can force a fresh line first.
	midline bool
}

type MachineState struct {
	Registers [8]uint16
	Program   uint16
	Cond      uint16
	Memory    [1 << 16]uint16
}

type Machine struct {
	Devices *DeviceHandler
	State   MachineState
	Status  Status
}
