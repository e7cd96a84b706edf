package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/exposure"
)

func (a *app) devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List compute devices and whether they work on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.printer()
			w := cmd.OutOrStdout()
			for _, name := range exposure.Devices() {
				e, err := exposure.New(
					exposure.WithDeviceName(name),
					exposure.WithMaxTextureSize(a.v.GetInt("max-texture")),
					exposure.WithOverlap(a.v.GetInt("overlap")),
				)
				if err != nil {
					p.Fprintf(w, "%-10s unavailable: %v\n", name, err)
					continue
				}
				p.Fprintf(w, "%-10s ok (block size %d)\n", name, e.BlockSize())
				if err := e.Close(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
