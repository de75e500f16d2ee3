package commands

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/colorchecker/engine/assets"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"github.com/spf13/cobra"
)

var lutsCmd = &cobra.Command{
	Use:   "luts",
	Short: "Manage LUT images",
}

var lutsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the generated LUT images and manifest",
	Long: `Generate the seven LUTs (passthrough, three simulations, three corrections)
as horizontal-strip PNGs together with a luts.yaml manifest. The directory can
be edited and passed back with --lut-dir.`,
	Example: `  colorchecker luts export --dir ./luts --size 64`,
	RunE:    runLutsExport,
}

var (
	exportDir  string
	exportSize int
)

func init() {
	rootCmd.AddCommand(lutsCmd)
	lutsCmd.AddCommand(lutsExportCmd)

	lutsExportCmd.Flags().StringVarP(&exportDir, "dir", "d", "", "output directory (required)")
	lutsExportCmd.Flags().IntVarP(&exportSize, "size", "s", assets.DefaultLutSize, "cube edge length")
	_ = lutsExportCmd.MarkFlagRequired("dir")
}

func runLutsExport(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	m, err := assets.ExportSet(exportDir, exportSize, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to export LUTs: %w", err)
	}
	logger.WithComponent("cmd").Info().Str("dir", exportDir).Int("size", m.Size).Int("luts", len(m.Luts)).Msg("LUTs exported")
	for _, e := range m.Luts {
		fmt.Fprintf(cmd.OutOrStdout(), "%d  %-22s %s\n", e.Index, e.Name, e.File)
	}
	return nil
}
