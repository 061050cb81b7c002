// Package security implements the safety gate in front of destructive
// intents.
//
// The gate has two parts:
//
//   - A static denylist of drive roots and operating-system directories
//     (IsSafe), extended by the configured protected paths.
//   - A mode-dependent confirmation prompt (Gate.Confirm).
//
// The denylist works on the literal target text. It does not resolve
// symlinks or relative traversal.
package security
