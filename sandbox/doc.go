// Package sandbox provides isolated scratch projects for testing
// command-line programs.
//
// Each Project owns a uniquely named temporary directory. Tests stage
// input files into it, run the subject binary with the project
// directory as the working directory, and assert on the captured
// stdout, stderr, exit code, and generated files. Projects are
// independent, so tests can run in parallel without coordination; the
// only shared state is the process-wide subject binary path, resolved
// once.
package sandbox
