// Package preflight provides readiness checks for external services
// and filesystem paths that Confab depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup so a misconfigured provider is
//     reported before any recording is picked up.
//   - The CLI "confab status" command uses individual check functions
//     (CheckTranscriptionFromConfig, CheckDirectoryAccess) to display
//     service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
