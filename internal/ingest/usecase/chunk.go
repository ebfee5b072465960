package usecase

import (
	"fmt"
	"time"

	"qbo-backend/internal/ledger/domain"
)

const dateLayout = "2006-01-02"

// ChunkMonths splits [start, end] into windows aligned to calendar months in UTC.
// Each window ends on the last day of the month months-1 after its start month,
// or on end, whichever is earlier; the next window starts on the following first.
func ChunkMonths(start, end time.Time, months int) []domain.ReportWindow {
	if months < 1 {
		months = 1
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var windows []domain.ReportWindow
	for cursor := start; !cursor.After(end); {
		chunkEnd := time.Date(cursor.Year(), cursor.Month()+time.Month(months), 0, 0, 0, 0, 0, time.UTC)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		windows = append(windows, domain.ReportWindow{
			Start: cursor.Format(dateLayout),
			End:   chunkEnd.Format(dateLayout),
		})
		cursor = time.Date(chunkEnd.Year(), chunkEnd.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	}
	return windows
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return s, e, nil
}
