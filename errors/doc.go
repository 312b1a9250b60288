// Package errors turns jira client failures into CLI errors with
// user-friendly messages.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// Wrap inspects the error taxonomy of the jira and http packages
// (config validation sentinels, *jira.APIError status sentinels,
// *http.TransportError, *http.ValidationError, unsupported operations)
// and picks a message. The original error stays reachable through
// errors.Is and errors.As.
//
//	issue, err := client.Issues().GetIssue(ctx, key).Get(ctx)
//	if err != nil {
//	    return errors.Wrap(err, cfg.URL)
//	}
//
//	if errors.IsAuthError(err) {
//	    // Handle auth-related error
//	}
package errors
