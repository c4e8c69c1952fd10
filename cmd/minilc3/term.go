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

package main

import (
	"bufio"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// rawKeyboard reads single characters from stdin for the GETC and IN traps,
// switching the terminal out of canonical mode around each blocking read.
type rawKeyboard struct {
	input *bufio.Reader
}

func (kb *rawKeyboard) ReadRawByte() (byte, error) {
	restore, err := enableRawInput()

	if err != nil {
		return 0, err
	}

	defer restore()

	return kb.input.ReadByte()
}

// enableRawInput disables line buffering and local echo on stdin and
// returns a function restoring the previous mode. On a non-terminal stdin
// (pipes, files) it is a no-op.
func enableRawInput() (func(), error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return func() {}, nil
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)

	if err != nil {
		return nil, err
	}

	termRestore := *termios
	termstate := *termios

	termstate.Lflag &^= unix.ECHO | unix.ICANON

	// Block until one character is available.
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &termstate); err != nil {
		return nil, err
	}

	return func() {
		unix.IoctlSetTermios(fd, unix.TCSETS, &termRestore)
	}, nil
}
