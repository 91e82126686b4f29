package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ayusman/lukis/internal/config"
	"github.com/ayusman/lukis/internal/painter"
	"github.com/ayusman/lukis/internal/store"
)

var (
	styleID   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleName = lipgloss.NewStyle().Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// openStore creates the data directory if needed and opens its database.
func openStore(cfg config.Config) (*store.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(path)
}

func newDrawingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawings",
		Short: "Manage saved drawings",
	}

	withStore := func(fn func(cmd *cobra.Command, s *store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			return fn(cmd, s, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved drawings, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			drawings, err := s.Drawings().List()
			if err != nil {
				return err
			}
			return printDrawings(cmd.OutOrStdout(), drawings, time.Now())
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <id> <file>",
		Short: "Write a saved drawing to a PNG file",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			if err := exportDrawing(s.Drawings(), args[0], args[1]); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("exported drawing", "id", args[0], "file", args[1])
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved drawing",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, args []string) error {
			if err := s.Drawings().Delete(args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("drawing %s not found", args[0])
				}
				return err
			}
			loggerFromContext(cmd.Context()).Info("deleted drawing", "id", args[0])
			return nil
		}),
	})

	return cmd
}

// printDrawings writes one line per drawing.
func printDrawings(w io.Writer, drawings []*store.Drawing, now time.Time) error {
	if len(drawings) == 0 {
		_, err := fmt.Fprintln(w, styleDim.Render("no drawings saved"))
		return err
	}

	for _, d := range drawings {
		line := strings.Join([]string{
			styleID.Render(d.ID),
			styleName.Render(d.Name),
			styleDim.Render(fmt.Sprintf("%s %dx%d %s %s",
				d.Mode, d.Width, d.Height,
				humanize.Bytes(uint64(d.Size)),
				humanize.RelTime(d.CreatedAt, now, "ago", "from now"),
			)),
		}, "  ")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// exportDrawing writes the PNG of drawing id to path.
func exportDrawing(repo *store.DrawingRepository, id, path string) error {
	d, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("drawing %s not found", id)
		}
		return err
	}
	if err := os.WriteFile(path, d.PNG, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// canvasSource is the part of the painter a save needs.
type canvasSource interface {
	Snapshot() ([]byte, error)
	State() painter.State
}

// saveDrawing stores the current canvas of p under name.
func saveDrawing(repo *store.DrawingRepository, p canvasSource, name string) (*store.Drawing, error) {
	png, err := p.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot canvas: %w", err)
	}

	state := p.State()
	d := &store.Drawing{
		Name:   name,
		Mode:   string(state.Mode),
		Width:  state.Canvas.Width,
		Height: state.Canvas.Height,
		PNG:    png,
	}
	if err := repo.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}
