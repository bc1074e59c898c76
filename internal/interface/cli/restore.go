package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/app"
	dfs "github.com/Ajay03299/DevForge/internal/infra/fs"
)

func newRestoreCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Put back the content saved in FILE.bak",
		Long: `Restore FILE from the backup written before its first repair. The backup is
kept, so restore can be repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := env.container(c.Context())
			if err != nil {
				return err
			}
			defer container.Close()

			store := container.Store()
			path := filepath.Clean(args[0])

			// A live session on the same file would overwrite the restored original
			unlock, err := container.Locker().Lock(c.Context(), path)
			if err != nil {
				return fmt.Errorf("failed to lock %s: %w", path, err)
			}
			defer func() {
				if err := unlock(); err != nil {
					app.GetLogger().Warn("failed to release lock on %s: %v", path, err)
				}
			}()

			if _, err := store.Restore(path); err != nil {
				if errors.Is(err, dfs.ErrNoBackup) {
					return fmt.Errorf("no backup for %s (expected %s)", path, store.BackupPath(path))
				}
				return err
			}
			fmt.Fprintf(env.out, "Restored %s from %s\n", path, store.BackupPath(path))
			return nil
		},
	}
}
