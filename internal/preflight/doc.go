// Package preflight provides readiness checks for the external tools,
// directories, and API endpoints the pipeline depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup so misconfiguration surfaces before
//     any recording is processed.
//   - The CLI "screendoc status" command uses individual check functions to
//     display service health.
package preflight
