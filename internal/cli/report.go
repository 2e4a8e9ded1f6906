// Package cli renders engine output for the admin command line.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/parlolabs/parlo/internal/srs"
	"github.com/parlolabs/parlo/internal/statistics"
)

// RenderDueList writes the user's due queue as a table, oldest overdue
// first. Items overdue by more than a week are highlighted.
func RenderDueList(w io.Writer, items []srs.ReviewItem, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing due. All caught up.")
		return
	}

	bold := color.New(color.Bold)
	overdue := color.New(color.FgRed)
	mild := color.New(color.FgYellow)

	bold.Fprintf(w, "%-40s %-28s %-10s %7s %7s\n", "ITEM", "CONTENT", "OVERDUE", "STREAK", "EASE")
	for _, item := range items {
		lag := now.Sub(item.NextReviewAt)
		lagLabel := formatLag(lag)

		line := fmt.Sprintf("%-40s %-28s %-10s %7d %7.2f",
			item.ID, item.ContentRef(), lagLabel, item.Streak, item.EaseFactor)
		switch {
		case lag > 7*24*time.Hour:
			overdue.Fprintln(w, line)
		case lag > 24*time.Hour:
			mild.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, "\n%d item(s) due\n", len(items))
}

func formatLag(lag time.Duration) string {
	if lag < time.Hour {
		return "now"
	}
	if lag < 24*time.Hour {
		return fmt.Sprintf("%dh", int(lag.Hours()))
	}
	return fmt.Sprintf("%dd", int(lag.Hours()/24))
}

// RenderStats writes the user's lifetime review statistics.
func RenderStats(w io.Writer, stats statistics.UserStats, totalPoints int) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Review statistics")
	fmt.Fprintf(w, "  Total reviews: %d\n", stats.TotalReviews)
	fmt.Fprintf(w, "  Best streak:   %d\n", stats.BestStreak)
	fmt.Fprintf(w, "  Average score: %d\n", stats.AverageScore)
	fmt.Fprintf(w, "  Total points:  %d\n", totalPoints)
}
