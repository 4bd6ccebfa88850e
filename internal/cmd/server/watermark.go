package serverrun

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/flake/internal/config"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	"github.com/rzbill/flake/internal/watermark"
)

// NewWatermarkCommand constructs the offline `watermark` command group. It
// opens the node's store directly, so the server must be stopped; pebble's
// directory lock rejects a second opener.
func NewWatermarkCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "watermark", Short: "Inspect or reset persisted high-water marks (server stopped)"}
	cmd.PersistentFlags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	cmd.AddCommand(newWatermarkListCommand(), newWatermarkResetCommand())
	return cmd
}

func openStore(cmd *cobra.Command) (*pebblestore.DB, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	return pebblestore.Open(pebblestore.Options{
		DataDir: filepath.Join(dataDir, "store"),
		Fsync:   pebblestore.FsyncModeAlways,
	})
}

func newWatermarkListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every persisted mark as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			marks, err := watermark.List(db)
			if err != nil {
				return err
			}
			if marks == nil {
				marks = []watermark.Mark{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(marks)
		},
	}
}

// newWatermarkResetCommand deletes one node's mark, e.g. before reusing its
// ids on a host whose clock is known to be correct.
func newWatermarkResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the mark of one (data center, machine) pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dc, _ := cmd.Flags().GetInt64("data-center-id")
			machine, _ := cmd.Flags().GetInt64("machine-id")
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return errors.New("reset drops restart protection for the node; pass --confirm")
			}
			if dc < 0 || machine < 0 {
				return errors.New("--data-center-id and --machine-id must be >= 0")
			}
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := watermark.NewStore(db, dc, machine).Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset watermark of data center %d machine %d\n", dc, machine)
			return nil
		},
	}
	cmd.Flags().Int64("data-center-id", 0, "Data center id")
	cmd.Flags().Int64("machine-id", 0, "Machine id")
	cmd.Flags().Bool("confirm", false, "Required")
	return cmd
}
