package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/drive-in-checkout/internal/model"
)

// ShowSearchQuery defines filters & pagination for searching shows.
type ShowSearchQuery struct {
	Title    string
	Date     string // YYYY-MM-DD; empty means today onwards
	Page     int
	PageSize int
}

func (q ShowSearchQuery) normalized() ShowSearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	return q
}

// SearchScheduled lists bookable shows ordered by date and time together
// with the total number of matches for pagination.
func (r *ShowRepo) SearchScheduled(ctx context.Context, q ShowSearchQuery) ([]model.Show, int64, error) {
	q = q.normalized()
	where := []string{"status = 'SCHEDULED'"}
	args := []any{}

	if q.Date != "" {
		where = append(where, "show_date = ?")
		args = append(args, q.Date)
	} else {
		where = append(where, "show_date >= DATE_FORMAT(UTC_DATE(), '%Y-%m-%d')")
	}
	if q.Title != "" {
		where = append(where, "LOWER(movie_title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT ` + showColumns + `
		FROM shows
		WHERE ` + cond + `
		ORDER BY show_date ASC, show_time ASC, id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Show, 0, q.PageSize)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(
			&s.ID, &s.MovieTitle, &s.ShowDate, &s.ShowTime, &s.BasePrice,
			&s.SlotRows, &s.SlotCols, &s.VIPRows, &s.Status,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
