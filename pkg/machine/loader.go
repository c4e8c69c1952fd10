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
	"encoding/binary"
	"io"
)

// LoadObj resets the machine and loads a program image from an object file
// stream. The first word is the origin address; every following word is
// placed in memory from the origin upward. Words are stored big-endian in
// the file and swapped into memory order as they are read.
//
// A stream that cannot supply the origin word and at least one program
// word, ends mid-word, or carries more words than fit between the origin
// and the top of memory is a FileError.
func (mc *Machine) LoadObj(reader io.Reader) error {
	mc.State.Reset()
	mc.Status = STATUS_RUNNING

	scratch := make([]byte, 2)

	if _, err := io.ReadFull(reader, scratch); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &FileError{Reason: "File is too short"}
		}

		return &FileError{Reason: "Failed to read file", Err: err}
	}

	origin := binary.BigEndian.Uint16(scratch)
	index := uint32(origin)

	for {
		_, err := io.ReadFull(reader, scratch)

		if err == io.EOF {
			break
		} else if err == io.ErrUnexpectedEOF {
			return &FileError{Reason: "File ends mid-word"}
		} else if err != nil {
			return &FileError{Reason: "Failed to read file", Err: err}
		}

		if index >= uint32(len(mc.State.Memory)) {
			return &FileError{Reason: "File is too long"}
		}

		mc.State.Memory[index] = binary.BigEndian.Uint16(scratch)
		index++
	}

	if index == uint32(origin) {
		return &FileError{Reason: "File is too short"}
	}

	mc.State.Program = origin

	return nil
}
