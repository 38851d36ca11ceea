// Package network builds the static module graph of a pulse network.
//
// A Graph is parsed once from configuration text and never mutated
// afterwards. Every module name that appears anywhere in the text, including
// destinations that are never defined and the synthetic "button" source, is
// interned to a small integer Handle so the simulator can index state by
// handle instead of hashing strings on every pulse.
//
// Configuration syntax, one module per line:
//
//	broadcaster -> a, b, c
//	%a -> b
//	&inv -> a
//
// The "%" prefix declares a flip-flop, "&" a conjunction, and no prefix a
// broadcaster.
package network
