// Package auth provides request authenticators for the Jira REST API.
//
// Every authenticator implements Authenticator and is applied to each
// outgoing request by the transport adapter:
//   - Basic: username + password (Server)
//   - APIToken: email + API token (Cloud)
//   - Bearer: personal access token (Server/Data Center)
//   - ConnectJWT: Atlassian Connect app JWT with query string hash
//   - OAuth2: any oauth2.TokenSource (static token or client credentials)
//
// # JWT Usage
//
//	a := &auth.ConnectJWT{
//	    Issuer:       "com.example.my-app",
//	    SharedSecret: []byte("shared-secret-from-installation!"),
//	    ContextPath:  "/jira",
//	}
//	req.Header.Get("Authorization") // "JWT eyJhbGciOi..."
//
// Tokens for a canonical request can be checked with ValidateConnectJWT.
package auth
