package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"siegemap/internal/board"
	"siegemap/internal/domain"
	"siegemap/internal/geometry"
)

// editingBoard is a one-tower gesture surface in edit mode.
func editingBoard() *geometry.Board {
	b := geometry.NewBoard()
	b.SetEditing(true)
	return b
}

func (c *cli) moveCmd() *cobra.Command {
	var dx, dy float64
	cmd := &cobra.Command{
		Use:   "move TOWER_ID",
		Short: "Drag a tower by a delta in map image pixels",
		Long: `Drag a tower by a delta in map image pixels.

Drag deltas are in the map image's own coordinates: the displayed scale does
not change how far a tower moves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			tower, err := c.client.GetTower(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			drag, err := editingBoard().BeginDrag(tower.ID, geometry.Point{X: tower.X, Y: tower.Y})
			if err != nil {
				return err
			}
			drag.Move(dx, dy)
			pos := drag.Commit()

			saved, err := c.client.UpdateGeometry(ctx, tower.ID, domain.GeometryUpdate{X: &pos.X, Y: &pos.Y})
			if err != nil {
				return c.fail("move tower", err)
			}
			c.log.Info("tower moved", zap.String("tower_id", saved.ID), zap.Float64("x", saved.X), zap.Float64("y", saved.Y))
			fmt.Fprintf(cmd.OutOrStdout(), "moved tower %s to (%g, %g)\n", saved.ID, saved.X, saved.Y)
			return nil
		},
	}
	cmd.Flags().Float64Var(&dx, "dx", 0, "horizontal delta")
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical delta")
	return cmd
}

func (c *cli) resizeCmd() *cobra.Command {
	var deltaY, scale, vw, vh float64
	var image string
	var mobile bool
	cmd := &cobra.Command{
		Use:   "resize TOWER_ID",
		Short: "Resize a tower by dragging its handle vertically",
		Long: `Resize a tower by dragging its handle vertically.

--delta-y is in screen pixels at the displayed scale. Give the scale with
--scale, or let it be computed from the map image (--image) and the viewport
(--vw, --vh, --mobile). The width always follows the height.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s := geometry.Scale(scale)
			if s <= 0 {
				return fmt.Errorf("scale must be positive, got %g", scale)
			}
			if image != "" {
				natural, err := board.NaturalSizeFile(image)
				if err != nil {
					return fmt.Errorf("read map image: %w", err)
				}
				tracker := geometry.NewScaleTracker(geometry.Viewport{Width: vw, Height: vh, Mobile: mobile})
				s = tracker.ImageLoaded(natural)
				c.log.Debug("scale from map image", zap.String("image", image), zap.Float64("scale", float64(s)))
			}

			tower, err := c.client.GetTower(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			resize, err := editingBoard().BeginResize(tower.ID, tower.Height*float64(s), s)
			if err != nil {
				return err
			}
			resize.Move(deltaY)
			size := resize.Commit()

			saved, err := c.client.UpdateGeometry(ctx, tower.ID, domain.GeometryUpdate{Height: &size.Height})
			if err != nil {
				return c.fail("resize tower", err)
			}
			c.log.Info("tower resized", zap.String("tower_id", saved.ID), zap.Float64("height", saved.Height))
			fmt.Fprintf(cmd.OutOrStdout(), "resized tower %s to %gx%g\n", saved.ID, saved.Width, saved.Height)
			return nil
		},
	}
	cmd.Flags().Float64Var(&deltaY, "delta-y", 0, "vertical handle delta in screen pixels")
	cmd.Flags().Float64Var(&scale, "scale", 1, "displayed map scale")
	cmd.Flags().StringVar(&image, "image", "", "map image used to compute the scale")
	cmd.Flags().Float64Var(&vw, "vw", 1280, "viewport width, with --image")
	cmd.Flags().Float64Var(&vh, "vh", 800, "viewport height, with --image")
	cmd.Flags().BoolVar(&mobile, "mobile", false, "mobile layout, with --image")
	cmd.MarkFlagsMutuallyExclusive("scale", "image")
	return cmd
}
