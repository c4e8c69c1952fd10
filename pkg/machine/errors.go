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
	"errors"
	"fmt"
)

var (
	ErrNoKeyboard = errors.New("No keyboard attached")
	ErrNoDisplay  = errors.New("No display attached")
)

// FileError reports an object file that could not be read or does not
// describe a loadable program image.
type FileError struct {
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}

	return e.Reason
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// InstructionError reports an instruction the machine refuses to execute.
// Addr is the address the instruction was fetched from; the program counter
// has already moved past it.
type InstructionError struct {
	Addr        uint16
	Instruction uint16
	Reason      string
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf(
		"%s (instruction %#04x at %#04x)", e.Reason, e.Instruction, e.Addr,
	)
}
