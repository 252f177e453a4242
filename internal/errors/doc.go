// Package errors provides structured, actionable error messages for the
// resumeup CLI.
//
// Errors carry a code, a category, a plain-language detail and an optional
// hint. Configuration errors can also point at the offending line of
// resumeup.json.
//
// # Error Categories
//
//   - upload: the submission did not complete (no file, rejected, unreachable)
//   - config: resumeup.json is missing, malformed or invalid
//   - cli: bad command-line usage
//
// # Usage
//
//	err := errors.New("E003").
//	    Wrap(cause).
//	    WithSuggestion("Check that the server is running: resumeup submit --server http://localhost:8000 cv.pdf")
//
//	errors.PrintError(err)
//	// ERROR E003: Upload server unreachable
//	//
//	//   The request never reached the server, so no response was received.
//	//
//	//   Hint: Check that the server is running ...
package errors
