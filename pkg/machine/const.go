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

// Condition flags. Exactly one is active at any time.
const (
	FLAG_POS  uint16 = 1 << 0
	FLAG_ZERO uint16 = 1 << 1
	FLAG_NEG  uint16 = 1 << 2
)

const (
	TRAP_GETC  TrapVector = 0x20
	TRAP_OUT   TrapVector = 0x21
	TRAP_PUTS  TrapVector = 0x22
	TRAP_IN    TrapVector = 0x23
	TRAP_PUTSP TrapVector = 0x24
	TRAP_HALT  TrapVector = 0x25
)

const (
	OP_BR   Opcode = 0b0000
	OP_ADD  Opcode = 0b0001
	OP_LD   Opcode = 0b0010
	OP_ST   Opcode = 0b0011
	OP_JSR  Opcode = 0b0100
	OP_AND  Opcode = 0b0101
	OP_LDR  Opcode = 0b0110
	OP_STR  Opcode = 0b0111
	OP_RTI  Opcode = 0b1000
	OP_NOT  Opcode = 0b1001
	OP_LDI  Opcode = 0b1010
	OP_STI  Opcode = 0b1011
	OP_JMP  Opcode = 0b1100
	OP_RES  Opcode = 0b1101 // Reserved
	OP_LEA  Opcode = 0b1110
	OP_TRAP Opcode = 0b1111
)

func (op Opcode) String() string {
	switch op {
	case OP_BR:
		return "BR[nzp]"
	case OP_ADD:
		return "ADD"
	case OP_LD:
		return "LD"
	case OP_ST:
		return "ST"
	case OP_JSR:
		return "JSR/JSRR"
	case OP_AND:
		return "AND"
	case OP_LDR:
		return "LDR"
	case OP_STR:
		return "STR"
	case OP_RTI:
		return "RTI"
	case OP_NOT:
		return "NOT"
	case OP_LDI:
		return "LDI"
	case OP_STI:
		return "STI"
	case OP_JMP:
		return "JMP/RET"
	case OP_RES:
		return "RESERVED"
	case OP_LEA:
		return "LEA"
	case OP_TRAP:
		return "TRAP"
	}

	return "UNKNOWN"
}
