package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/globalenv/internal/global"
	"github.com/conn-castle/globalenv/internal/manifest"
	"github.com/conn-castle/globalenv/internal/messages"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.SyncUse,
		Short: messages.SyncShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			lock, err := manifest.AcquireLock(a.paths.LockPath)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			m, err := manifest.Discover(a.paths.ManifestPath, nil)
			if err != nil {
				return err
			}
			mat := newMaterializer(a.paths, a.cfg, debugWriter(opts.verbose, cmd.ErrOrStderr()))
			result, err := global.Sync(cmd.Context(), m, global.SyncDeps{
				EnvsDir:   a.paths.EnvsDir,
				Installer: mat,
				Remover:   mat,
				Shims:     a.publisher(),
			})
			out := cmd.OutOrStdout()
			for _, name := range result.Synced {
				_, _ = fmt.Fprintf(out, messages.SyncSyncedFmt, name)
			}
			for _, name := range result.Removed {
				_, _ = fmt.Fprintf(out, messages.GlobalRemovedFmt, name)
			}
			return err
		},
	}
}
