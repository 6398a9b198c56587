// Package output writes user-facing text for the testid CLI and maps errors
// to process exit codes.
//
// Identifier lines go to stdout and nothing else does, so the output of
// "testid generate" can be piped. Notices and warnings go to stderr.
package output
