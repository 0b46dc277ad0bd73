// Package ir provides the record and value types shared by the store, the
// CLI and the scenario harness.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Logical names are a closed enumeration with stable integer values
//   - Setting versions are explicit per-name counters, never timestamps
//   - Listing entries marshal to either a bare string or an object with "fn"
package ir
