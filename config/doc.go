// Package config resolves jirarest client settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. Environment variables (JIRAREST_URL, JIRAREST_AUTH_TYPE, ...)
//  3. Local config: the nearest .jirarest.yaml from the working directory up
//  4. Global config: ~/.config/jirarest/config.yaml
//  5. Defaults from jira.DefaultConfig
//
// Config files mirror jira.Config:
//
//	url: https://example.atlassian.net
//	api_version: v3
//	auth:
//	  type: api_token
//	  email: me@example.com
//	  token: <api token>
//	http:
//	  timeout: 30s
//
// Nested keys are addressed with dots ("auth.type"). Each resolved value
// records its Source.
//
//	cfg := config.NewResolver(config.DefaultResolverConfig()).Resolve()
//	jcfg, err := cfg.JiraConfig()
//	client, err := jira.NewClient(jcfg)
package config
