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
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lassandro/minilc3/pkg/machine"
)

const usage = "Usage: minilc3 [FILE]"

// Exit statuses, one per error class.
const (
	exitOK = iota
	exitUsage
	exitFile
	exitInstruction
)

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func minilc3() int {
	args := os.Args[1:]

	if len(args) != 1 || args[0] == "" || args[0][0] == '-' {
		log.Println(usage)
		return exitUsage
	}

	file, err := os.Open(args[0])

	if err != nil {
		log.Println(err)
		return exitFile
	}

	defer file.Close()

	var mc machine.Machine
	var dh machine.DeviceHandler
	dh.Keyboard = &rawKeyboard{input: bufio.NewReader(os.Stdin)}
	dh.Display = bufio.NewWriter(os.Stdout)
	mc.Devices = &dh

	if err := mc.LoadObj(file); err != nil {
		log.Println(err)
		return exitFile
	}

	if err := mc.Run(); err != nil {
		log.Println(err)

		var instructionErr *machine.InstructionError

		if errors.As(err, &instructionErr) {
			return exitInstruction
		}

		return exitFile
	}

	// Leave the cursor at column 0 so the shell prompt does not land
	// mid-line.
	dh.PrintOnNewLine()
	dh.Display.Flush()

	return exitOK
}

func main() {
	os.Exit(minilc3())
}
