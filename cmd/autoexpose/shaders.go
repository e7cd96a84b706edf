package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/exposure/internal/compute"
)

func (a *app) shadersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shaders",
		Short: "Compile the embedded WGSL shaders to SPIR-V",
		Long: `Compile the embedded WGSL shaders to SPIR-V and report their sizes.
With --out the SPIR-V modules are written to <dir>/<name>.spv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := a.v.GetString("shaders.out")
			if dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			p := a.printer()
			for _, s := range compute.Shaders() {
				spirv, err := s.Compile()
				if err != nil {
					return err
				}
				p.Fprintf(cmd.OutOrStdout(), "%-10s wgsl %d bytes, spir-v %d bytes\n",
					s.Name, len(s.WGSL), len(spirv))

				if dir == "" {
					continue
				}
				path := filepath.Join(dir, s.Name+".spv")
				if err := os.WriteFile(path, spirv, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "directory to write .spv files into")
	_ = a.v.BindPFlag("shaders.out", cmd.Flags().Lookup("out"))
	return cmd
}
