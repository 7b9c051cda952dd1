package dashboardservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/writelyhq/writely/internal/common"
)

func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{m: newDashboardModel(db)}
}

// monthsBack walks back n-1 months from now, rolling over year
// boundaries, and returns n entries ordered oldest to newest with the
// current month last.
func monthsBack(now time.Time, n int) []MonthCount {
	months := make([]MonthCount, 0, n)

	for i := n - 1; i >= 0; i-- {
		year := now.Year()
		month := int(now.Month()) - i
		for month <= 0 {
			month += 12
			year--
		}
		months = append(months, MonthCount{Year: year, Month: month})
	}

	return months
}

// Stats computes the per-author dashboard statistics.
func (s *DashboardService) Stats(ctx context.Context, userID int) (*Stats, error) {
	v := common.NewValidator()
	v.Check(userID > 0, "user_id", "must be greater than zero")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	stats := &Stats{}

	var err error
	if stats.Published, err = s.m.getPublished(ctx, userID, listLimit); err != nil {
		return nil, err
	}
	if stats.Drafts, err = s.m.getDrafts(ctx, userID, listLimit); err != nil {
		return nil, err
	}
	if stats.PendingComments, err = s.m.getPendingComments(ctx, userID, listLimit); err != nil {
		return nil, err
	}
	if stats.CountPublished, err = s.m.countPublished(ctx, userID); err != nil {
		return nil, err
	}
	if stats.CountDrafts, err = s.m.countDrafts(ctx, userID); err != nil {
		return nil, err
	}
	if stats.CountPending, err = s.m.countPendingComments(ctx, userID); err != nil {
		return nil, err
	}
	if stats.TotalCommentsReceived, err = s.m.countCommentsReceived(ctx, userID); err != nil {
		return nil, err
	}

	// Month buckets are computed in UTC on both sides so a post
	// published near a month boundary lands in the same bucket the
	// database groups it into.
	months := monthsBack(time.Now().UTC(), monthWindow)
	since := time.Date(months[0].Year, time.Month(months[0].Month), 1, 0, 0, 0, 0, time.UTC)

	counts, err := s.m.countPublishedByMonth(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	total := 0
	for i := range months {
		months[i].Count = counts[[2]int{months[i].Year, months[i].Month}]
		total += months[i].Count
	}
	stats.PostsByMonth = months

	// Both averages are defined as 0 when their denominator would make
	// them meaningless.
	if total > 0 {
		stats.AvgPostsPerMonth = float64(total) / monthWindow
	}
	if stats.CountPublished > 0 {
		stats.AvgCommentsPerPost = float64(stats.TotalCommentsReceived) / float64(stats.CountPublished)
	}

	return stats, nil
}
