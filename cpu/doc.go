// Package cpu implements the machine and assembler for the rvsim simulator.
//
// The machine consists of a program counter (Pc), thirty-two 32-bit
// general-purpose registers (x0-x31), and a flat word-addressed memory that
// serves as both data and stack. There is no hardwired zero register; x1 is
// the link register by convention only.
//
// The assembler accepts a small RISC-V flavoured language: one instruction
// or directive per line, words separated by single spaces. Directives start
// with '.', and are either jump labels or '.equ NAME VALUE' equates.
// Immediates may use compile-time $(...) expressions.
//
// Immediates are base 10, in the range -2147483648 to 4294967295, and are
// kept as their 32-bit pattern: 'li x1 4294967295' and 'li x1 -1' load the
// same word. Register dumps show negative words with their unsigned reading
// as well.
package cpu
