package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	fsadapter "github.com/pkgship/pkgship/internal/adapters/fs"
	httpadapter "github.com/pkgship/pkgship/internal/adapters/http"
	"github.com/pkgship/pkgship/internal/app"
	"github.com/pkgship/pkgship/internal/cliconfig"
	"github.com/pkgship/pkgship/internal/domain"
)

const longHelp = `Publish locally built package artifacts to a gallery endpoint.

Highlights:
  - Remembers every endpoint you publish to and keeps one active as the default.
  - Stores one API key per endpoint; a key given on the command line is saved
    after a successful publish.
  - Speaks both the v1 and v2 push protocols; your last choice becomes the
    default for the next run.
`

var exampleUsage = strings.TrimSpace(`
  pkgship push mylib.1.2.3.nupkg --source https://gallery.example/api/v2 --api-key <key>
  pkgship push mylib.1.2.3.nupkg --v1
  pkgship sources --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "pkgship",
		Short:   "Publish package artifacts to a gallery endpoint",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	push := &cobra.Command{
		Use:   "push <package>",
		Short: "Publish one package artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Flags override env, env overrides file, file overrides defaults.
			protoSpecified := changed["v1"] || os.Getenv("PKGSHIP_USE_V1") != ""

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				protoSpecified = protoSpecified || fc.UseV1 != nil
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking API key)
			logCfg := cfg
			if len(logCfg.APIKey) > 0 {
				logCfg.APIKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPush(ctx, cfg, args[0], protoSpecified)
		},
	}

	push.Flags().StringVarP(&cfg.Endpoint, "source", "s", cfg.Endpoint, "gallery endpoint to publish to (default: active remembered source)")
	push.Flags().StringVarP(&cfg.APIKey, "api-key", "k", cfg.APIKey, "credential for the endpoint (default: stored key for the source)")
	push.Flags().BoolVar(&cfg.UseV1, "v1", cfg.UseV1, "use the v1 push protocol")
	push.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "push request timeout")
	push.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory holding sources, credentials and settings")
	push.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default $HOME/.pkgship/config.toml)")

	var watch bool
	sources := &cobra.Command{
		Use:   "sources",
		Short: "List remembered gallery endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSources(ctx, cfg, watch)
		},
	}
	sources.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory holding sources, credentials and settings")
	sources.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and reprint when the source list changes")

	root.AddCommand(push, sources)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func runPush(ctx context.Context, cfg cliconfig.Config, packagePath string, protoSpecified bool) error {
	log := cliconfig.Logger()

	name, version, err := domain.ParseArtifactPath(packagePath)
	if err != nil {
		return err
	}
	artifact := domain.NewPackageArtifact(name, version, func() (io.ReadSeeker, error) {
		f, err := os.Open(packagePath)
		if err != nil {
			return nil, err
		}
		return f, nil
	})

	session := app.NewSession(artifact, app.Deps{
		Channels:    httpadapter.Factory(&http.Client{Timeout: cfg.HTTPTimeout}, log),
		Credentials: fsadapter.NewCredentialFileStore(cfg.StateDir),
		Registry:    fsadapter.NewEndpointFileRegistry(cfg.StateDir, log),
		Settings:    fsadapter.NewSettingsFileStore(cfg.StateDir),
		Logger:      log,
	})
	defer func() {
		if err := session.Dispose(); err != nil {
			log.Warn().Err(err).Msg("failed to persist protocol default")
		}
	}()

	if cfg.Endpoint != "" {
		session.SetSelectedEndpoint(cfg.Endpoint)
	}
	if cfg.APIKey != "" {
		session.SetCredential(cfg.APIKey)
	}
	if protoSpecified {
		session.SetProtocol(domain.ProtocolFromV1(cfg.UseV1))
	}

	res, err := app.NewDriver(log).Publish(ctx, session)
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("%s", session.Status())
	}

	fmt.Println(session.Status())
	return nil
}

func runSources(ctx context.Context, cfg cliconfig.Config, watch bool) error {
	log := cliconfig.Logger()
	registry := fsadapter.NewEndpointFileRegistry(cfg.StateDir, log)

	printSources(registry)
	if !watch {
		return nil
	}

	err := registry.Watch(ctx, func() { printSources(registry) })
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printSources(registry *fsadapter.EndpointFileRegistry) {
	active := registry.Active()
	endpoints := registry.Endpoints()
	if len(endpoints) == 0 {
		fmt.Println("no remembered sources")
		return
	}
	for _, e := range endpoints {
		marker := " "
		if domain.EqualEndpoint(e, active) {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, e)
	}
}
