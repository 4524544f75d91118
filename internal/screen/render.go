package screen

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/user/frame/internal/client"
)

// RenderHome 输出首页：大图 + Popular Now + New Releases
func RenderHome(w io.Writer, s State) error {
	switch s.Phase {
	case Loading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case Error:
		_, err := fmt.Fprintf(w, "Error: %s\nRun the command again to refresh.\n", s.Message)
		return err
	}

	if hero, ok := s.Hero(); ok {
		fmt.Fprintf(w, "★ %s\n  %s · %d min · %.1f/5\n", hero.Title, hero.Genre, hero.Duration, hero.Rating)
		if hero.Description != "" {
			fmt.Fprintf(w, "  %s\n", hero.Description)
		}
		fmt.Fprintln(w)
	}

	if err := renderSection(w, "Popular Now", s.PopularNow()); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return renderSection(w, "New Releases", s.NewReleases())
}

func renderSection(w io.Writer, title string, movies []client.Movie) error {
	fmt.Fprintln(w, title)
	if len(movies) == 0 {
		_, err := fmt.Fprintln(w, "  (none)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, m := range movies {
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%.1f\n", m.ID, m.Title, m.Genre, m.Rating)
	}
	return tw.Flush()
}

// RenderDetails 输出电影详情，inList 决定片单按钮的样式
func RenderDetails(w io.Writer, m client.Movie, inList bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Title\t%s\n", m.Title)
	fmt.Fprintf(tw, "Genre\t%s\n", m.Genre)
	fmt.Fprintf(tw, "Duration\t%d min\n", m.Duration)
	fmt.Fprintf(tw, "Rating\t%.1f/5\n", m.Rating)
	if m.IsNew {
		fmt.Fprintf(tw, "New\tyes\n")
	}
	fmt.Fprintf(tw, "Views\t%d\n", m.ViewsCount)
	fmt.Fprintf(tw, "Poster\t%s\n", m.PosterURL)
	if err := tw.Flush(); err != nil {
		return err
	}
	if m.Description != "" {
		fmt.Fprintf(w, "\n%s\n", m.Description)
	}
	myList := "[+ My List]"
	if inList {
		myList = "[✓ My List]"
	}
	_, err := fmt.Fprintf(w, "\n[Play]  %s\n", myList)
	return err
}

// RenderProfile 输出个人统计
func RenderProfile(w io.Writer, stats client.Stats, loggedIn bool) error {
	if !loggedIn {
		fmt.Fprintln(w, "Guest (run `frame login` to see your stats)")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "My List\t%d\n", stats.Favorites)
	fmt.Fprintf(tw, "Watched\t%d\n", stats.Watched)
	fmt.Fprintf(tw, "Uploaded\t%d\n", stats.Uploaded)
	return tw.Flush()
}
