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
	"fmt"

	"github.com/lassandro/minilc3/pkg/encoding"
)

// Reset returns the state to its power-on values: memory and registers
// zeroed, program counter at 0x0000, condition code zero.
func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x0000
	}

	for i := range mc.Memory {
		mc.Memory[i] = 0x0000
	}

	mc.Program = 0x0000
	mc.Cond = FLAG_ZERO
}

func (mc *Machine) setFlags(value uint16) {
	if value>>15 == 1 {
		mc.State.Cond = FLAG_NEG
	} else if value == 0 {
		mc.State.Cond = FLAG_ZERO
	} else {
		mc.State.Cond = FLAG_POS
	}
}

// fault moves the machine to STATUS_FAULTED and builds the error for the
// offending instruction. Callers must fault before committing any register
// or memory effect of the instruction.
func (mc *Machine) fault(addr uint16, instruction uint16, reason string) error {
	mc.Status = STATUS_FAULTED

	return &InstructionError{
		Addr:        addr,
		Instruction: instruction,
		Reason:      reason,
	}
}

func (mc *Machine) keyboard() (TerminalInput, error) {
	if mc.Devices == nil || mc.Devices.Keyboard == nil {
		return nil, ErrNoKeyboard
	}

	return mc.Devices.Keyboard, nil
}

func (mc *Machine) display() (*DeviceHandler, error) {
	if mc.Devices == nil || mc.Devices.Display == nil {
		return nil, ErrNoDisplay
	}

	return mc.Devices, nil
}

// WriteChar sends one character to the display and tracks whether the
// cursor is left past column 0.
func (dh *DeviceHandler) WriteChar(ch byte) error {
	if err := dh.Display.WriteByte(ch); err != nil {
		return err
	}

	dh.midline = ch != '\n'

	return nil
}

// PrintOnNewLine emits a newline unless the cursor already sits at
// column 0.
func (dh *DeviceHandler) PrintOnNewLine() error {
	if !dh.midline {
		return nil
	}

	return dh.WriteChar('\n')
}

func (dh *DeviceHandler) writeString(s string) error {
	for i := 0; i < len(s); i++ {
		if err := dh.WriteChar(s[i]); err != nil {
			return err
		}
	}

	return nil
}

// Run steps the machine until it halts or faults. The only exits are the
// HALT trap, a fatal instruction, or a device failure.
func (mc *Machine) Run() error {
	for mc.Status == STATUS_RUNNING {
		if err := mc.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Step performs one fetch-decode-execute cycle. The program counter moves
// past the instruction before the instruction body runs, so every
// PC-relative offset below is taken from the already-incremented value.
// Stepping a halted or faulted machine does nothing.
func (mc *Machine) Step() error {
	if mc.Status != STATUS_RUNNING {
		return nil
	}

	addr := mc.State.Program
	instruction := mc.State.Memory[addr]
	opcode := Opcode(encoding.ExtractBits(instruction, 15, 12))

	mc.State.Program++

	switch opcode {
	// ADD  |0001    |DR   |SR1  |0|00 |SR2   | Register  addition
	// ADD  |0001    |DR   |SR1  |1|imm5      | Immediate addition
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADD:
		dest := encoding.ExtractBits(instruction, 11, 9)
		src1 := encoding.ExtractBits(instruction, 8, 6)

		var value uint16

		if encoding.ExtractBits(instruction, 5, 5) == 1 {
			value = encoding.SignExtend(
				encoding.ExtractBits(instruction, 4, 0), 5,
			)
		} else {
			if encoding.ExtractBits(instruction, 4, 3) != 0 {
				return mc.fault(
					addr, instruction,
					fmt.Sprintf("Invalid padding for %v", opcode),
				)
			}

			value = mc.State.Registers[encoding.ExtractBits(instruction, 2, 0)]
		}

		result := mc.State.Registers[src1] + value
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// AND  |0101    |DR   |SR1  |0|00 |SR2   | Register  bitwise
	// AND  |0101    |DR   |SR1  |1|imm5      | Immediate bitwise
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_AND:
		dest := encoding.ExtractBits(instruction, 11, 9)
		src1 := encoding.ExtractBits(instruction, 8, 6)

		var value uint16

		// The immediate form masks with the raw 5-bit pattern; it is not
		// sign-extended.
		if encoding.ExtractBits(instruction, 5, 5) == 1 {
			value = encoding.ExtractBits(instruction, 4, 0)
		} else {
			if encoding.ExtractBits(instruction, 4, 3) != 0 {
				return mc.fault(
					addr, instruction,
					fmt.Sprintf("Invalid padding for %v", opcode),
				)
			}

			value = mc.State.Registers[encoding.ExtractBits(instruction, 2, 0)]
		}

		result := mc.State.Registers[src1] & value
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// NOT  |1001    |DR   |SR   |1|11111     | Bitwise complement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_NOT:
		if encoding.ExtractBits(instruction, 5, 0) != 0b111111 {
			return mc.fault(
				addr, instruction,
				fmt.Sprintf("Invalid padding for %v", opcode),
			)
		}

		dest := encoding.ExtractBits(instruction, 11, 9)
		src := encoding.ExtractBits(instruction, 8, 6)

		result := ^mc.State.Registers[src]
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// LEA  |1110    |DR   |PCoffset9         | Load effective address
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LEA:
		dest := encoding.ExtractBits(instruction, 11, 9)

		mc.State.Registers[dest] = mc.State.Program +
			encoding.SignExtend(encoding.ExtractBits(instruction, 8, 0), 9)

	// LD   |0010    |DR   |PCoffset9         | Load
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LD:
		dest := encoding.ExtractBits(instruction, 11, 9)
		target := mc.State.Program +
			encoding.SignExtend(encoding.ExtractBits(instruction, 8, 0), 9)

		result := mc.State.Memory[target]
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// LDI  |1010    |DR   |PCoffset9         | Load indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDI:
		dest := encoding.ExtractBits(instruction, 11, 9)
		target := mc.State.Program +
			encoding.SignExtend(encoding.ExtractBits(instruction, 8, 0), 9)

		result := mc.State.Memory[mc.State.Memory[target]]
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// LDR  |0110    |DR   |BaseR|offset6     | Load base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDR:
		dest := encoding.ExtractBits(instruction, 11, 9)
		base := encoding.ExtractBits(instruction, 8, 6)
		target := mc.State.Registers[base] +
			encoding.SignExtend(encoding.ExtractBits(instruction, 5, 0), 6)

		result := mc.State.Memory[target]
		mc.State.Registers[dest] = result
		mc.setFlags(result)

	// ST   |0011    |SR   |PCoffset9         | Store
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ST:
		src := encoding.ExtractBits(instruction, 11, 9)
		target := mc.State.Program +
			encoding.SignExtend(encoding.ExtractBits(instruction, 8, 0), 9)

		mc.State.Memory[target] = mc.State.Registers[src]

	// STI  |1011    |SR   |PCoffset9         | Store indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STI:
		src := encoding.ExtractBits(instruction, 11, 9)
		target := mc.State.Program +
			encoding.SignExtend(encoding.ExtractBits(instruction, 8, 0), 9)

		mc.State.Memory[mc.State.Memory[target]] = mc.State.Registers[src]

	// STR  |0111    |SR   |BaseR|offset6     | Store base+offset
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_STR:
		src := encoding.ExtractBits(instruction, 11, 9)
		base := encoding.ExtractBits(instruction, 8, 6)
		target := mc.State.Registers[base] +
			encoding.SignExtend(encoding.ExtractBits(instruction, 5, 0), 6)

		mc.State.Memory[target] = mc.State.Registers[src]

	// BR   |0000    |N|Z|P|PCoffset9         | Conditional branch
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_BR:
		flags := encoding.ExtractBits(instruction, 11, 9)

		// The all-zero word decodes as a branch that is never taken. Any
		// other encoding with no condition bits set is malformed.
		if flags == 0 {
			if instruction == 0x0000 {
				break
			}

			return mc.fault(
				addr, instruction,
				fmt.Sprintf("Invalid condition for %v", opcode),
			)
		}

		if flags&mc.State.Cond != 0 {
			mc.State.Program += encoding.SignExtend(
				encoding.ExtractBits(instruction, 8, 0), 9,
			)
		}

	// JMP  |1100    |000  |BaseR|000000      | Jump
	// RET  |1100    |000  |111  |000000      | Return
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JMP:
		if encoding.ExtractBits(instruction, 11, 9) != 0 ||
			encoding.ExtractBits(instruction, 5, 0) != 0 {
			return mc.fault(
				addr, instruction,
				fmt.Sprintf("Invalid padding for %v", opcode),
			)
		}

		base := encoding.ExtractBits(instruction, 8, 6)

		mc.State.Program = mc.State.Registers[base]

	// JSR  |0100    |1|PCoffset11            | Jump to subroutine
	// JSRR |0100    |0|00 |BaseR|000000      | Jump to subroutine register
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JSR:
		if encoding.ExtractBits(instruction, 11, 11) == 1 {
			mc.State.Registers[7] = mc.State.Program
			mc.State.Program += encoding.SignExtend(
				encoding.ExtractBits(instruction, 10, 0), 11,
			)
		} else {
			if encoding.ExtractBits(instruction, 10, 9) != 0 ||
				encoding.ExtractBits(instruction, 5, 0) != 0 {
				return mc.fault(addr, instruction, "Invalid padding for JSRR")
			}

			base := encoding.ExtractBits(instruction, 8, 6)

			// Read the base register before saving the return address so
			// JSRR R7 jumps through the old value.
			target := mc.State.Registers[base]
			mc.State.Registers[7] = mc.State.Program
			mc.State.Program = target
		}

	// TRAP |1111    |0000 |trapvect8         | I/O routine call
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_TRAP:
		if encoding.ExtractBits(instruction, 11, 8) != 0 {
			return mc.fault(
				addr, instruction,
				fmt.Sprintf("Invalid padding for %v", opcode),
			)
		}

		return mc.trap(addr, instruction)

	// RTI  |1000    |000000000000            | Return from interrupt
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RTI:
		return mc.fault(
			addr, instruction, "Cannot use RTI in non-supervisor mode",
		)

	// RES  |1101    |                        | Reserved (illegal)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RES:
		return mc.fault(addr, instruction, "Cannot use reserved instruction")

	default:
		// A 4-bit opcode is fully enumerated above.
		panic(fmt.Sprintf("machine: unreachable opcode %#x", uint16(opcode)))
	}

	return nil
}

// trap dispatches one of the fixed I/O routines. A device failure is fatal
// to the run.
func (mc *Machine) trap(addr uint16, instruction uint16) error {
	vector := TrapVector(encoding.ExtractBits(instruction, 7, 0))

	switch vector {
	// GETC |0x20| Read one character, no echo
	case TRAP_GETC:
		keyboard, err := mc.keyboard()

		if err != nil {
			return mc.deviceFault(err)
		}

		ch, err := keyboard.ReadRawByte()

		if err != nil {
			return mc.deviceFault(err)
		}

		mc.State.Registers[0] = uint16(ch)

	// OUT  |0x21| Write the low byte of R0
	case TRAP_OUT:
		dh, err := mc.display()

		if err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.WriteChar(byte(mc.State.Registers[0])); err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.Display.Flush(); err != nil {
			return mc.deviceFault(err)
		}

	// PUTS |0x22| Write the zero-terminated string at R0, one char per word
	case TRAP_PUTS:
		dh, err := mc.display()

		if err != nil {
			return mc.deviceFault(err)
		}

		for i := mc.State.Registers[0]; ; i++ {
			ch := byte(mc.State.Memory[i])

			if ch == 0x00 {
				break
			}

			if err := dh.WriteChar(ch); err != nil {
				return mc.deviceFault(err)
			}
		}

		if err := dh.Display.Flush(); err != nil {
			return mc.deviceFault(err)
		}

	// IN   |0x23| Prompt, read one character, echo it
	case TRAP_IN:
		dh, err := mc.display()

		if err != nil {
			return mc.deviceFault(err)
		}

		keyboard, err := mc.keyboard()

		if err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.PrintOnNewLine(); err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.writeString("Input> "); err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.Display.Flush(); err != nil {
			return mc.deviceFault(err)
		}

		ch, err := keyboard.ReadRawByte()

		if err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.WriteChar(ch); err != nil {
			return mc.deviceFault(err)
		}

		if err := dh.Display.Flush(); err != nil {
			return mc.deviceFault(err)
		}

		mc.State.Registers[0] = uint16(ch)

	// PUTSP|0x24| Write the packed string at R0, two chars per word
	case TRAP_PUTSP:
		dh, err := mc.display()

		if err != nil {
			return mc.deviceFault(err)
		}

		for i := mc.State.Registers[0]; ; i++ {
			word := mc.State.Memory[i]
			hi := byte(word >> 8)
			lo := byte(word)

			if hi == 0x00 {
				break
			}

			if err := dh.WriteChar(hi); err != nil {
				return mc.deviceFault(err)
			}

			if lo == 0x00 {
				break
			}

			if err := dh.WriteChar(lo); err != nil {
				return mc.deviceFault(err)
			}
		}

		if err := dh.Display.Flush(); err != nil {
			return mc.deviceFault(err)
		}

	// HALT |0x25| Stop the machine
	case TRAP_HALT:
		mc.Status = STATUS_HALTED

	default:
		return mc.fault(
			addr, instruction,
			fmt.Sprintf("Invalid TRAP vector %#02x", uint16(vector)),
		)
	}

	return nil
}

func (mc *Machine) deviceFault(err error) error {
	mc.Status = STATUS_FAULTED

	return err
}
