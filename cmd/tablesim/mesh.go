package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/pucktable/internal/config"
	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/physics"
	"github.com/Faultbox/pucktable/internal/scene"
)

func newMeshCmd() *cobra.Command {
	var objPath string
	cmd := &cobra.Command{
		Use:   "mesh [object]",
		Short: "build an object's mesh and collision shape and print statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			name := "blue-ring"
			if len(args) == 1 {
				name = args[0]
			}
			var obj *config.ObjectConfig
			for i := range cfg.Scene.Objects {
				if cfg.Scene.Objects[i].Name == name {
					obj = &cfg.Scene.Objects[i]
					break
				}
			}
			if obj == nil {
				return fmt.Errorf("object %q: %w", name, scene.ErrUnknownObject)
			}

			f, err := scene.FactoryFor(*obj)
			if err != nil {
				return err
			}
			m, err := f.Model()
			if err != nil {
				return err
			}
			body, err := f.Physics(m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			size := m.Bounds.Size()
			fmt.Fprintf(out, "%s (%s)\n", name, f.Kind())
			fmt.Fprintf(out, "  vertices  %d\n", len(m.Vertices))
			fmt.Fprintf(out, "  faces     %d\n", m.FaceCount())
			fmt.Fprintf(out, "  groups    %d\n", len(m.Groups))
			fmt.Fprintf(out, "  size      %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
			fmt.Fprintf(out, "  radius    %.3f\n", m.Sphere.Radius)
			fmt.Fprintf(out, "  shape     %s margin %.3f\n", body.Shape.Kind(), body.Shape.Margin())
			if c, ok := body.Shape.(*physics.Compound); ok {
				fmt.Fprintf(out, "  children  %d\n", len(c.Children))
			}
			fmt.Fprintf(out, "  mass      %g\n", body.Mass)

			if objPath != "" {
				return writeOBJ(objPath, name, m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&objPath, "obj", "", "write the mesh as Wavefront OBJ")
	return cmd
}

func writeOBJ(path, name string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.WriteOBJ(f, name, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
