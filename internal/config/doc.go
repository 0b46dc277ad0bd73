// Package config loads redsql configuration.
//
// Configuration is read from YAML and validated against an embedded CUE
// schema before any store is opened. The shape mirrors what the store
// consumes:
//
//	sql:
//	  driver: sqlite3
//	  name: ./red.db
//	  host: ""
//	  username: ""
//	  password: ""
//	readOnly: false
//	flowFilePretty: false
//	library:
//	  extensions:
//	    flows: [".json"]
//
// readOnly suppresses every settings write; flowFilePretty switches stored
// settings text to 4-space indented JSON. library.extensions lists, per entry
// type, the implicit extensions tried when an exact library path misses. The
// "*" key applies to every type without its own list.
package config
