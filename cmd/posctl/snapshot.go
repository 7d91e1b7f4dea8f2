package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"veredapos/internal/model"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import the whole application state as JSON",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the current snapshot to a file (stdout when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		out := io.Writer(cmd.OutOrStdout())
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(model.Snapshot{
			Version: model.SchemaVersion,
			SavedAt: time.Now().UTC(),
			State:   s.store.Current(),
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored state with a previously exported snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var snap model.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		if snap.State == nil {
			return fmt.Errorf("%s holds no state", args[0])
		}
		if snap.Version > model.SchemaVersion {
			return fmt.Errorf("snapshot v%d is newer than this build (v%d)", snap.Version, model.SchemaVersion)
		}

		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		snap.State.RefreshTableStatus()
		s.store.Replace(snap.State)
		if err := s.save(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported snapshot v%d: %d orders, %d customers, %d dishes\n",
			snap.Version, len(snap.State.Orders), len(snap.State.Customers), len(snap.State.Menu))
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)
}
