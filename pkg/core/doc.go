// Package core defines the shared language of the surfacegen pipeline.
//
// This package contains:
//   - The error taxonomy (Kind, Error) every pipeline stage reports with
//   - Diagnostics and severities collected into batch reports
//
// The Golden Rule: pkg/core imports only stdlib and the errors library.
// All other packages depend on core, not the reverse.
package core
