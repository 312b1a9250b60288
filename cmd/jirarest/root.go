package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/jirarest/config"
	clierrors "github.com/randalmurphal/jirarest/errors"
	"github.com/randalmurphal/jirarest/jira"
)

// app carries what every subcommand needs. The Jira client is built on
// first use so config commands work without a server.
type app struct {
	out    io.Writer
	errOut io.Writer

	resolverConfig config.ResolverConfig
	flags          map[string]string
	verbose        bool

	resolved *config.Resolved
	logger   *slog.Logger
	client   *jira.Client
}

func run(ctx context.Context, args []string) int {
	return runWith(ctx, args, os.Stdout, os.Stderr, config.DefaultResolverConfig())
}

func runWith(ctx context.Context, args []string, out, errOut io.Writer, rc config.ResolverConfig) int {
	rc.ErrWriter = errOut
	a := &app{out: out, errOut: errOut, resolverConfig: rc, flags: map[string]string{}}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		serverURL := ""
		if a.resolved != nil {
			serverURL = a.resolved.Get(config.KeyURL)
		}
		errorColor.Fprintf(errOut, "Error: ")
		fmt.Fprintln(errOut, clierrors.Wrap(err, serverURL))
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	var (
		noColor                   bool
		url, apiVersion, authType string
	)
	root := &cobra.Command{
		Use:           "jirarest",
		Short:         "Query and update Jira through its REST API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.flags[config.KeyURL] = url
			a.flags[config.KeyAPIVersion] = apiVersion
			a.flags[config.KeyAuthType] = authType
			if noColor {
				a.flags[config.KeyNoColor] = "true"
			}
			a.resolve()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&url, "url", "", "Jira base URL")
	pf.StringVar(&apiVersion, "api-version", "", "REST API version (v2 or v3)")
	pf.StringVar(&authType, "auth-type", "", "anonymous, api_token, basic, pat, oauth2 or jwt")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log each request to stderr")

	root.AddCommand(
		a.serverInfoCmd(),
		a.whoamiCmd(),
		a.issueCmd(),
		a.searchCmd(),
		a.projectCmd(),
		a.componentCmd(),
		a.metadataCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) resolve() {
	resolver := config.NewResolver(a.resolverConfig)
	a.resolved = resolver.ResolveWithFlags(a.flags)

	if a.resolved.Get(config.KeyNoColor) == "true" {
		color.NoColor = true
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

// jira returns the client, creating it from the resolved config.
func (a *app) jira() (*jira.Client, *jira.Config, error) {
	cfg, err := a.resolved.JiraConfig()
	if err != nil {
		return nil, nil, err
	}
	if a.client != nil {
		return a.client, cfg, nil
	}
	if cfg.URL == "" {
		return nil, nil, clierrors.NewNotConfiguredError()
	}
	client, err := jira.NewClient(cfg,
		jira.WithLogger(a.logger),
		jira.WithUserAgent("jirarest/"+version),
	)
	if err != nil {
		return nil, nil, err
	}
	a.client = client
	a.logger.Debug("jira client ready", slog.String("url", cfg.URL), slog.String("api_version", string(cfg.GetAPIVersion())))
	return client, cfg, nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
