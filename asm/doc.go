// Package asm implements the two pass assembler for the μRISC system.
//
// The first pass strips comments, records labels against the address of the
// next emitted word, defines equates, and expands the .string, .asciz, .halt
// and .word directives into their word counts. The second pass encodes every
// entry with the complete label table, so branches may refer forward.
//
// Macros are defined with '.macro NAME arg...' and closed by '.endm'. An
// invocation expands the body during the first pass, replacing each argument
// name with its value. Each '@' in the body becomes a prefix unique to the
// invocation, for labels local to one expansion.
//
// Operands may be registers (r0-r7), numbers (decimal, 0x hex, or binary
// with a trailing 'b'), character literals, equates, labels, or $(...)
// compile-time expressions evaluated with all equates and labels in scope.
package asm
