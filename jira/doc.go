// Package jira provides a typed client for the Jira REST API.
//
// A Client aggregates one resource client per area of the API (issues,
// projects, components, metadata, search, users, sessions, versions, project
// roles and audit records). All of them share a single transport. Every
// operation returns a *promise.Promise that settles with a parsed domain
// value or an error:
//
//	cfg := jira.DefaultConfig()
//	cfg.URL = "https://jira.example.com"
//	cfg.Auth = jira.AuthConfig{Type: jira.AuthPAT, Token: token}
//
//	client, err := jira.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	issue, err := client.Issues().GetIssue(ctx, "PROJ-123").Get(ctx)
//
// Calls are independent and may be issued concurrently; combine them with
// promise.All or chain them with promise.Then.
//
// # Inputs
//
// Request inputs use opt.Field for optional values, so an update can tell
// a field left alone from a field cleared:
//
//	in := jira.ComponentInput{
//		Description:  opt.Of("new description"),
//		LeadUsername: opt.Null[string](),
//	}
//
// Inputs missing required values fail with *http.ValidationError before a
// request is sent.
//
// # Error Handling
//
// Failures fall into distinct types:
//   - *http.TransportError: the request did not complete
//   - *APIError: the server answered with a non-2xx status
//   - *DecodeError: the response could not be understood; Field names the
//     offending JSON field
//   - ErrUnsupportedOperation: the API does not provide the operation
//
// APIError unwraps to the http status sentinels, so errors.Is works:
//
//	if errors.Is(err, http.ErrNotFound) {
//		// component doesn't exist
//	}
//
// Nothing is retried.
package jira
