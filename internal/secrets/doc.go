// Package secrets detects credentials in uploaded documents using gitleaks.
//
// A Detector runs the gitleaks default rule set over text content and
// reports which rules matched and on which line, never the matched values.
// The HTTP gateway uses it to refuse uploads that would copy credentials
// into a hosted vector store.
package secrets
