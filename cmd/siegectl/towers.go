package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"siegemap/internal/assignment"
	"siegemap/internal/board"
	"siegemap/internal/collab"
	"siegemap/internal/domain"
	"siegemap/internal/editor"
	"siegemap/internal/render"
)

func (c *cli) towersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "towers",
		Short: "List and edit towers",
	}
	cmd.AddCommand(
		c.listCmd(),
		c.showCmd(),
		c.setCmd(),
		c.moveCmd(),
		c.resizeCmd(),
		c.searchCmd(),
		c.eligibleCmd(),
		c.assignCmd(),
		c.unassignCmd(),
		c.deleteCmd(),
	)
	return cmd
}

// fail logs the full error and returns the message a user should see.
func (c *cli) fail(action string, err error) error {
	c.log.Debug(action+" failed", zap.Error(err))
	return errors.New(editor.AlertMessage(err))
}

func (c *cli) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// openSession starts an edit of tower id against a snapshot of its map.
func (c *cli) openSession(ctx context.Context, id string) (*editor.Session, error) {
	tower, err := c.client.GetTower(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := c.client.ListTowers(ctx, tower.MapName)
	if err != nil {
		return nil, err
	}
	return editor.Open(ctx, tower, all, c.deps()), nil
}

func (c *cli) composer() *board.Composer {
	images := render.NewImageCache(render.ImageResolver{Catalog: c.catalog})
	return board.NewComposer(render.NewRenderer(c.catalog, images))
}

func (c *cli) listCmd() *cobra.Command {
	var mapName string
	var names bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List towers in board order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			towers, err := c.client.ListTowers(ctx, mapName)
			if err != nil {
				return c.fail("list towers", err)
			}
			res := collab.NewResolver(c.client, c.sharedLogger()).ResolveTowers(ctx, towers)
			view := c.composer().TowerList(mapName, towers, res, names)
			out := cmd.OutOrStdout()
			for _, card := range view.Cards {
				printView(out, card)
			}
			c.log.Debug("towers listed", zap.String("map", mapName), zap.Int("count", len(view.Cards)))
			return nil
		},
	}
	cmd.Flags().StringVar(&mapName, "map", "", "only towers of this map")
	cmd.Flags().BoolVar(&names, "names", false, "show user names instead of monster icons")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show TOWER_ID",
		Short: "Show a tower and its numbered assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			printSession(cmd.OutOrStdout(), s, c.catalog)
			return nil
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	var number, color string
	var stars int
	cmd := &cobra.Command{
		Use:   "set TOWER_ID",
		Short: "Change a tower's number, stars or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			if cmd.Flags().Changed("number") {
				if err := s.SetTowerNumber(number); err != nil {
					return c.fail("set number", err)
				}
			}
			if cmd.Flags().Changed("stars") {
				if err := s.SetStars(stars); err != nil {
					return c.fail("set stars", err)
				}
			}
			if cmd.Flags().Changed("color") {
				if err := s.SetColor(domain.Color(color)); err != nil {
					return c.fail("set color", err)
				}
			}
			return c.save(ctx, cmd, s)
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "tower number: QG or 1-12")
	cmd.Flags().IntVar(&stars, "stars", 0, "star count: 4 or 5")
	cmd.Flags().StringVar(&color, "color", "", "blue, red or yellow")
	return cmd
}

func (c *cli) save(ctx context.Context, cmd *cobra.Command, s *editor.Session) error {
	tower, err := s.Save(ctx)
	if err != nil {
		return c.fail("save tower", err)
	}
	c.log.Info("tower saved", zap.String("tower_id", tower.ID), zap.String("session_id", s.ID()))
	fmt.Fprintf(cmd.OutOrStdout(), "saved tower %s (%s, %d stars, %s)\n", tower.ID, tower.TowerNumber, tower.Stars, tower.Color.OrDefault())
	return nil
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search TOWER_ID [QUERY]",
		Short: "Find defenses by monster name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			query := ""
			if len(args) == 2 {
				query = args[1]
			}
			defenses, err := s.Selector().SearchDefenses(ctx, query)
			if err != nil {
				return c.fail("search defenses", err)
			}
			out := cmd.OutOrStdout()
			for _, d := range defenses {
				fmt.Fprintf(out, "%s\t%s\n", d.ID, monsterNames(c.catalog, d))
			}
			return nil
		},
	}
}

func (c *cli) eligibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eligible TOWER_ID DEFENSE_ID",
		Short: "List users that can still be assigned a defense on a tower",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			users, err := s.Selector().EligibleUsers(ctx, args[1])
			if err != nil {
				return c.fail("list eligible users", err)
			}
			out := cmd.OutOrStdout()
			for _, u := range users {
				fmt.Fprintf(out, "%s\t%s\n", u.ID, u.DisplayName())
			}
			return nil
		},
	}
}

func (c *cli) assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign TOWER_ID DEFENSE_ID USER",
		Short: "Assign a defense and one of its eligible users to a tower",
		Long: `Assign a defense and one of its eligible users to a tower.

USER is a user id or identifier. A tower holds at most 5 assignments and a
(defense, user) pair can only be placed on one tower of a map.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			sel := s.Selector()

			defenses, err := sel.SearchDefenses(ctx, "")
			if err != nil {
				return c.fail("load defenses", err)
			}
			defense, ok := findDefense(defenses, args[1])
			if !ok {
				return fmt.Errorf("defense %s not found", args[1])
			}
			users, err := sel.EligibleUsers(ctx, defense.ID)
			if err != nil {
				return c.fail("list eligible users", err)
			}
			user, ok := findUser(users, args[2])
			if !ok {
				return fmt.Errorf("user %s cannot take defense %s on this tower", args[2], defense.ID)
			}

			outcome, err := sel.Choose(defense, user)
			if err != nil {
				return c.fail("add assignment", err)
			}
			switch outcome {
			case assignment.Added:
			case assignment.RejectedCapacity:
				return fmt.Errorf("tower already has %d assignments", assignment.MaxPerTower)
			case assignment.RejectedDuplicate:
				return fmt.Errorf("%s already holds this defense", user.DisplayName())
			default:
				return fmt.Errorf("assignment %s", outcome)
			}
			return c.save(ctx, cmd, s)
		},
	}
}

func (c *cli) unassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign TOWER_ID N",
		Short: "Remove the Nth assignment as numbered by show",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid assignment number %q", args[1])
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			if n < 1 || n > len(s.Assignments()) {
				return fmt.Errorf("tower has %d assignments", len(s.Assignments()))
			}
			if err := s.Remove(n - 1); err != nil {
				return c.fail("remove assignment", err)
			}
			return c.save(ctx, cmd, s)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete TOWER_ID",
		Short: "Delete a tower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			s, err := c.openSession(ctx, args[0])
			if err != nil {
				return c.fail("open tower", err)
			}
			confirm := func() bool {
				if yes {
					return true
				}
				prompt := fmt.Sprintf("Delete tower %s? [y/N] ", args[0])
				if c.confirm != nil {
					return c.confirm(prompt)
				}
				return askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
			}
			deleted, err := s.Delete(ctx, confirm)
			if err != nil {
				return c.fail("delete tower", err)
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			c.log.Info("tower deleted", zap.String("tower_id", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted tower %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}

func findDefense(defenses []domain.Defense, id string) (domain.Defense, bool) {
	for _, d := range defenses {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Defense{}, false
}

func findUser(users []domain.User, key string) (domain.User, bool) {
	for _, u := range users {
		if u.ID == key || u.Identifier == key {
			return u, true
		}
	}
	return domain.User{}, false
}
