package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLite adapts a sqlite database to the Store interface. Each tab is a
// table of TEXT columns named after the tab's headers; RowRef is the
// sqlite rowid.
type SQLite struct {
	DB *sql.DB
}

func columnsFor(tab string) ([]string, error) {
	cols, ok := Headers[tab]
	if !ok {
		return nil, fmt.Errorf("unknown tab %s", tab)
	}
	return cols, nil
}

func fieldAllowed(tab, field string) bool {
	cols, ok := Headers[tab]
	if !ok {
		return false
	}
	for _, c := range cols {
		if c == field {
			return true
		}
	}
	return false
}

func (s SQLite) ReadRows(ctx context.Context, tab string) ([]Row, error) {
	cols, err := columnsFor(tab)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT rowid, %s FROM %s ORDER BY rowid`, strings.Join(cols, ", "), tab)
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, tab, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var ref int64
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, 0, len(cols)+1)
		dest = append(dest, &ref)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, tab, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			if cells[i].Valid {
				rec[c] = cells[i].String
			} else {
				rec[c] = ""
			}
		}
		out = append(out, Row{Ref: RowRef(ref), Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, tab, err)
	}
	return out, nil
}

func (s SQLite) AppendRow(ctx context.Context, tab string, rec Record) error {
	cols, err := columnsFor(tab)
	if err != nil {
		return err
	}
	for field := range rec {
		if !fieldAllowed(tab, field) {
			return fmt.Errorf("unknown field %s in tab %s", field, tab)
		}
	}
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		args[i] = rec[c]
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		tab, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrUnavailable, tab, err)
	}
	return nil
}

func (s SQLite) UpdateCell(ctx context.Context, tab string, ref RowRef, field, value string) error {
	if !fieldAllowed(tab, field) {
		return fmt.Errorf("unknown field %s in tab %s", field, tab)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s=? WHERE rowid=?`, tab, field)
	res, err := s.DB.ExecContext(ctx, query, value, int64(ref))
	if err != nil {
		return fmt.Errorf("%w: update %s.%s: %v", ErrUnavailable, tab, field, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update %s: row %d not found", tab, ref)
	}
	return nil
}

// BatchUpdateCells runs the whole batch in one transaction: either every
// cell lands or none does.
func (s SQLite) BatchUpdateCells(ctx context.Context, tab string, updates []CellUpdate) error {
	for _, u := range updates {
		if !fieldAllowed(tab, u.Field) {
			return fmt.Errorf("unknown field %s in tab %s", u.Field, tab)
		}
	}
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: batch update %s: %v", ErrUnavailable, tab, err)
	}
	defer tx.Rollback()
	for _, u := range updates {
		query := fmt.Sprintf(`UPDATE %s SET %s=? WHERE rowid=?`, tab, u.Field)
		res, err := tx.ExecContext(ctx, query, u.Value, int64(u.Ref))
		if err != nil {
			return fmt.Errorf("%w: update %s.%s: %v", ErrUnavailable, tab, u.Field, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update %s: row %d not found", tab, u.Ref)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: batch update %s: %v", ErrUnavailable, tab, err)
	}
	return nil
}
