package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/StevePic95/skylardle/internal/board"
	"github.com/StevePic95/skylardle/internal/tui"
)

type BoardsCmd struct {
	Validate bool `help:"Load and validate every board in the catalog"`
}

func (c *BoardsCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	return c.run(os.Stdout, cfg.Boards.Dir, catalog, time.Now())
}

func (c *BoardsCmd) run(w io.Writer, dir string, catalog *board.Catalog, now time.Time) error {
	m := catalog.Manifest()
	fmt.Fprintln(w, tui.HeaderStyle.Render("SKYLARDLE BOARDS"))
	fmt.Fprintf(w, "Directory:   %s\n", dir)
	fmt.Fprintf(w, "Start date:  %s\n", m.StartDate)
	fmt.Fprintf(w, "Boards:      %d\n", m.BoardCount)
	fmt.Fprintf(w, "Today:       #%d\n", catalog.IDForDate(now))

	if !c.Validate {
		return nil
	}

	fmt.Fprintln(w)
	invalid := 0
	for id := 1; id <= m.BoardCount; id++ {
		b, err := catalog.Load(id)
		if err != nil {
			invalid++
			fmt.Fprintf(w, "%s #%d: %v\n", tui.ErrorStyle.Render("FAIL"), id, err)
			continue
		}
		fmt.Fprintf(w, "%s #%d: %s / %s / %s\n", tui.SuccessStyle.Render("ok"), id,
			b.Single.Categories[0], b.Double.Categories[0], b.Final.Category)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d boards are invalid", invalid, m.BoardCount)
	}
	return nil
}
