package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/pucktable/internal/config"
)

func newConfigCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if save {
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved to %s\n", config.ConfigDir())
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also write it to the user config directory")
	return cmd
}
