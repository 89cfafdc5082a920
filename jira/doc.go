// Package jira implements the tracker contract against the Jira REST
// API, supporting both Cloud (API v3) and Server/DC (API v2).
//
// The package registers itself with the tracker registry under the
// name "jira"; importing it for side effects is enough to enable it:
//
//	import _ "github.com/randalmurphal/trackwork/jira"
//
// Credentials resolve from JIRA_BASE_URL, JIRA_USER_EMAIL, and
// JIRA_API_TOKEN, falling back to the OS keyring and then to an
// interactive prompt when tracker.OpenOptions.Interactive is set.
//
// Jira quirks the adapter absorbs so callers don't have to:
//
//   - Statuses are not writable fields. Status changes run as workflow
//     transitions; an unreachable status fails with a TransitionError
//     listing the transitions that were available.
//   - Cloud descriptions are Atlassian Document Format, Server
//     descriptions are plain strings. Both normalize to plain text.
//   - Search is JQL. Filters render to a single query with reserved
//     characters escaped, and results page lazily.
package jira
