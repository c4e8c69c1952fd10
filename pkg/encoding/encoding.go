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

package encoding

// Extracts the closed bit range [high:low] of a word as an unsigned value.
// An inverted or out-of-range request is a programmer error and panics.
func ExtractBits(value uint16, high uint16, low uint16) uint16 {
	if high > 15 || high < low {
		panic("encoding: invalid bit range")
	}

	return (value >> low) & (uint16(1)<<(high-low+1) - 1)
}

// Widens a bitcount-wide two's-complement field to the full word width,
// preserving numeric value. Valid for every width up to and including 16.
func SignExtend(value uint16, bitcount uint16) uint16 {
	sign := uint16(1) << (bitcount - 1)

	return (value ^ sign) - sign
}

// Reverses the byte order of a word. Object files store each word with its
// bytes reversed relative to the in-memory representation.
func SwapEndian(value uint16) uint16 {
	return (value >> 8) | (value << 8)
}
