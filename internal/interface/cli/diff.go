package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/adapter/presenter"
)

func newDiffCmd(env *cmdEnv) *cobra.Command {
	var statOnly bool

	cmd := &cobra.Command{
		Use:   "diff FILE",
		Short: "Show what repairs changed in FILE since its backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := env.container(c.Context())
			if err != nil {
				return err
			}
			defer container.Close()

			store := container.Store()
			path := args[0]
			if !store.HasBackup(path) {
				return fmt.Errorf("no backup for %s (expected %s)", path, store.BackupPath(path))
			}
			original, err := store.Read(store.BackupPath(path))
			if err != nil {
				return err
			}
			current, err := store.Read(path)
			if err != nil {
				return err
			}

			differ := container.Differ()
			if statOnly {
				added, deleted := differ.Diff(original, current).Stats()
				fmt.Fprintf(env.out, "%s: +%d -%d\n", path, added, deleted)
				return nil
			}

			unified, err := differ.Unified(filepath.Base(path), original, current)
			if err != nil {
				return err
			}
			if unified == "" {
				fmt.Fprintf(env.out, "%s is identical to its backup\n", path)
				return nil
			}
			presenter.NewCLIRepairPresenter(env.out).PresentDiff(unified)
			return nil
		},
	}

	cmd.Flags().BoolVar(&statOnly, "stat", false, "Only print added and deleted line counts")
	return cmd
}
