// Package harness runs scenario files against a fresh store and records a
// trace of every step.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: library_tree
//	description: "Directory listings are rebuilt from saved paths"
//	config:
//	  readOnly: false
//	  flowFilePretty: false
//	  extensions:
//	    flows: [".json"]
//	steps:
//	  - op: save_setting
//	    name: flows
//	    value: [{id: "n1"}]
//	  - op: get_setting
//	    name: flows
//	    expect: [{id: "n1"}]
//	  - op: save_entry
//	    type: functions
//	    path: B/file2.js
//	    meta: {ghi: jkl}
//	    body: "Hi"
//	  - op: get_entry
//	    type: functions
//	    path: B
//	    expect: [{ghi: jkl, fn: file2.js}]
//
// # Operations
//
//   - save_setting: Save a value under a logical name
//   - get_setting: Read the newest value (or default) for a logical name
//   - history: Read every retained value for a logical name, oldest first
//   - save_entry: Append a library entry
//   - get_entry: Resolve a library path to a body or a listing
//
// Every op accepts expect_error, a substring the step's error must contain.
// Expected values are compared after a JSON round trip, so integers in the
// scenario match numbers read back from the store.
//
// # Deterministic Testing
//
// Each run uses an in-memory database and numbers its steps with
// testutil.Sequence, so the same scenario always produces the same trace.
// RunWithGolden compares that trace against testdata/golden/<name>.golden.
package harness
