// Package plan provides the instance model for recipe-network production planning.
//
// # Reading Guide
//
// Start with these files to understand the data the rest of the module passes around:
//   - instance.go: Item, Recipe (with precomputed rate maps) and Instance
//   - instance_io.go: validated loading and saving of the JSON instance schema
//   - rng.go: the explicit, partitioned random source used by generation
//
// # Architecture
//
// The plan package owns the data types; behaviour lives in sub-packages:
//   - plan/generator/: random acyclic recipe-network synthesis
//   - plan/model/: compiles an Instance into a mixed-integer linear program
//   - plan/solver/: the solving-engine contract and a pure-Go branch-and-bound engine
//   - plan/report/: material balance checks and human-readable solution output
//
// Instances are immutable after construction. The model builder reads them and
// never mutates them.
package plan
