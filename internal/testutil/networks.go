// Package testutil holds network fixtures and trace helpers shared by the
// package tests.
package testutil

// Three flip-flops in a ring closed by an inverter. One press sends
// 8 Low and 4 High pulses and leaves every module where it started.
const ExampleOne = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

// A two-bit counter with inverters feeding an undefined "output" sink.
// Its state repeats every four presses.
const ExampleTwo = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output
`

// ExampleOne with the inverter removed; c has no destinations.
const OpenChain = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> 
`

// Three flip-flop chains of length 1, 2 and 3 feed one conjunction in
// front of rx. A chain of length k first emits High on press 2^(k-1), so
// rx is first reached after lcm(1, 2, 4) = 4 presses.
const Counters = `broadcaster -> a, x, p
%a -> hub
%x -> y
%y -> hub
%p -> q
%q -> r
%r -> hub
&hub -> rx
`
