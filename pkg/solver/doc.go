/*
Package solver defines the transformation steps that make up an evaluation
plan.

A Solver consumes a mutable domain.TaskState together with a Generate
function bound to the engine's gateway, and returns the updated state. The
built-in solvers cover the common evaluation shapes (system messages,
prompt templating, chain-of-thought, plain generation, multiple choice,
self-critique); Func adapts any state->state function for everything else.

Solvers within one plan run execute strictly sequentially, so they may
mutate the state freely without synchronization.
*/
package solver
