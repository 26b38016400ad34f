package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conn-castle/globalenv/internal/global"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/matchspec"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
	"github.com/conn-castle/globalenv/internal/platform"
	"github.com/conn-castle/globalenv/internal/shim"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var channels []string
	var targetPlatform platform.Platform
	var environment names.EnvironmentName
	var expose []string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Long:  messages.InstallLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := global.Request{
				Environment: environment,
				Channels:    channels,
				Platform:    targetPlatform,
			}
			for _, arg := range args {
				spec, err := matchspec.Parse(arg)
				if err != nil {
					return err
				}
				req.Specs = append(req.Specs, spec)
			}
			for _, raw := range expose {
				mapping, err := names.ParseMapping(raw)
				if err != nil {
					return err
				}
				req.Expose = append(req.Expose, mapping)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			lock, err := manifest.AcquireLock(a.paths.LockPath)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			original, err := manifest.Discover(a.paths.ManifestPath, confirmManifestCreation(assumeYes))
			if err != nil {
				return err
			}
			publisher := a.publisher()
			installer := newMaterializer(a.paths, a.cfg, debugWriter(opts.verbose, cmd.ErrOrStderr()))
			deps := global.Deps{
				Config:    a.cfg,
				Installer: installer,
				Prefixes:  global.DiskPrefixes{EnvsDir: a.paths.EnvsDir},
				Shims:     publisher,
				Reverter:  shim.Reverter{Installer: installer, Publisher: publisher},
			}
			result, err := global.Install(cmd.Context(), original, req, deps)
			a.printWarnings(cmd.ErrOrStderr(), result.Warnings)
			if err != nil {
				return err
			}
			if opts.verbose {
				if err := printDiff(cmd.ErrOrStderr(), original, result.Manifest); err != nil {
					return err
				}
			}
			printInstalled(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&channels, "channel", "c", nil, messages.InstallFlagChannel)
	cmd.Flags().VarP(&targetPlatform, "platform", "p", messages.InstallFlagPlatform)
	cmd.Flags().VarP(&environment, "environment", "e", messages.InstallFlagEnv)
	cmd.Flags().StringArrayVar(&expose, "expose", nil, messages.InstallFlagExpose)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, messages.InstallFlagYes)
	cmd.Flags().BoolVar(&assumeYes, "assume-yes", false, messages.InstallFlagYes)
	_ = cmd.Flags().MarkHidden("assume-yes")
	return cmd
}

func printDiff(w io.Writer, before *manifest.Manifest, after *manifest.Manifest) error {
	diff, err := before.Diff(after)
	if err != nil || diff == "" {
		return err
	}
	_, _ = fmt.Fprintln(w, messages.InstallDiffHeader)
	_, _ = fmt.Fprint(w, diff)
	return nil
}

func printInstalled(w io.Writer, result global.Result) {
	for _, name := range result.Installed {
		_, _ = fmt.Fprintf(w, messages.GlobalInstalledFmt, name)
		env, ok := result.Manifest.Environment(name)
		if !ok {
			continue
		}
		for _, mapping := range env.ExposedMappings() {
			_, _ = fmt.Fprintf(w, messages.GlobalExposedFmt, mapping.ExposedName(), mapping.Executable())
		}
	}
}
