package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/support-hours/internal/persistence"
)

const dateLayout = "2006-01-02"

// HoursRepository implements persistence.BusinessHoursRepository on SQLite.
type HoursRepository struct {
	pool *ConnectionPool
}

// NewHoursRepository creates a business-hours repository backed by pool.
func NewHoursRepository(pool *ConnectionPool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

// CreateConfig inserts a configuration and its child rows transactionally.
func (r *HoursRepository) CreateConfig(ctx context.Context, config persistence.BusinessHoursConfig) error {
	if config.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO business_hours_configs
				(id, name, timezone, opens_at, closes_at, working_days,
				 outside_hours_message, weekend_message, holiday_message,
				 warning_minutes, cutoff_minutes, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			config.ID,
			config.Name,
			config.Timezone,
			config.OpensAt,
			config.ClosesAt,
			strings.Join(config.WorkingDays, ","),
			config.OutsideHoursMessage,
			config.WeekendMessage,
			config.HolidayMessage,
			config.WarningMinutes,
			config.CutoffMinutes,
			config.IsActive,
			config.CreatedAt.UTC().Format(time.RFC3339),
			config.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		return r.insertChildrenTx(tx, config)
	})
}

// UpdateConfig replaces a configuration and rewrites its child rows.
func (r *HoursRepository) UpdateConfig(ctx context.Context, config persistence.BusinessHoursConfig) error {
	if config.ID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE business_hours_configs
			SET name = ?, timezone = ?, opens_at = ?, closes_at = ?, working_days = ?,
			    outside_hours_message = ?, weekend_message = ?, holiday_message = ?,
			    warning_minutes = ?, cutoff_minutes = ?, updated_at = ?
			WHERE id = ?`,
			config.Name,
			config.Timezone,
			config.OpensAt,
			config.ClosesAt,
			strings.Join(config.WorkingDays, ","),
			config.OutsideHoursMessage,
			config.WeekendMessage,
			config.HolidayMessage,
			config.WarningMinutes,
			config.CutoffMinutes,
			config.UpdatedAt.UTC().Format(time.RFC3339),
			config.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.Exec(`DELETE FROM business_hours_holidays WHERE config_id = ?`, config.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM business_hours_special WHERE config_id = ?`, config.ID); err != nil {
			return mapError(err)
		}
		return r.insertChildrenTx(tx, config)
	})
}

func (r *HoursRepository) insertChildrenTx(tx *sql.Tx, config persistence.BusinessHoursConfig) error {
	for _, holiday := range config.Holidays {
		_, err := tx.Exec(`
			INSERT INTO business_hours_holidays (id, config_id, date, name, description, recurring)
			VALUES (?, ?, ?, ?, ?, ?)`,
			holiday.ID,
			config.ID,
			holiday.Date.Format(dateLayout),
			holiday.Name,
			holiday.Description,
			holiday.Recurring,
		)
		if err != nil {
			return mapError(err)
		}
	}
	for _, special := range config.SpecialHours {
		_, err := tx.Exec(`
			INSERT INTO business_hours_special (id, config_id, date, opens_at, closes_at, closed, reason, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			special.ID,
			config.ID,
			special.Date.Format(dateLayout),
			special.OpensAt,
			special.ClosesAt,
			special.Closed,
			special.Reason,
			special.Position,
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// GetConfig retrieves a configuration with its child rows.
func (r *HoursRepository) GetConfig(ctx context.Context, id string) (persistence.BusinessHoursConfig, error) {
	if id == "" {
		return persistence.BusinessHoursConfig{}, persistence.ErrNotFound
	}
	return r.getConfigWhere(ctx, "id = ?", id)
}

// GetActiveConfig retrieves the single active configuration.
func (r *HoursRepository) GetActiveConfig(ctx context.Context) (persistence.BusinessHoursConfig, error) {
	return r.getConfigWhere(ctx, "is_active = 1")
}

func (r *HoursRepository) getConfigWhere(ctx context.Context, where string, args ...any) (persistence.BusinessHoursConfig, error) {
	query := `
		SELECT id, name, timezone, opens_at, closes_at, working_days,
		       outside_hours_message, weekend_message, holiday_message,
		       warning_minutes, cutoff_minutes, is_active, created_at, updated_at
		FROM business_hours_configs
		WHERE ` + where

	config, err := scanConfig(r.pool.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return persistence.BusinessHoursConfig{}, err
	}

	if err := r.loadChildren(ctx, &config); err != nil {
		return persistence.BusinessHoursConfig{}, err
	}
	return config, nil
}

// ListConfigs returns all configurations ordered by creation time then ID.
// Child rows are included.
func (r *HoursRepository) ListConfigs(ctx context.Context) ([]persistence.BusinessHoursConfig, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, timezone, opens_at, closes_at, working_days,
		       outside_hours_message, weekend_message, holiday_message,
		       warning_minutes, cutoff_minutes, is_active, created_at, updated_at
		FROM business_hours_configs
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var configs []persistence.BusinessHoursConfig
	for rows.Next() {
		config, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range configs {
		if err := r.loadChildren(ctx, &configs[i]); err != nil {
			return nil, err
		}
	}
	return configs, nil
}

// DeleteConfig removes a configuration; child rows cascade.
func (r *HoursRepository) DeleteConfig(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM business_hours_configs WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// Activate flags the config active and clears every other flag in the same
// transaction. The partial unique index on is_active guards the invariant
// against writers that bypass this method.
func (r *HoursRepository) Activate(ctx context.Context, id string, now time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	stamp := now.UTC().Format(time.RFC3339)
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE business_hours_configs SET is_active = 0, updated_at = ? WHERE is_active = 1 AND id != ?`, stamp, id); err != nil {
			return mapError(err)
		}
		result, err := tx.Exec(`UPDATE business_hours_configs SET is_active = 1, updated_at = ? WHERE id = ?`, stamp, id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// PruneExpired deletes non-recurring holidays and special-hours rows dated
// strictly before the given calendar date.
func (r *HoursRepository) PruneExpired(ctx context.Context, before time.Time) error {
	cutoff := before.Format(dateLayout)
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM business_hours_holidays WHERE recurring = 0 AND date < ?`, cutoff); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(`DELETE FROM business_hours_special WHERE date < ?`, cutoff); err != nil {
			return mapError(err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (persistence.BusinessHoursConfig, error) {
	var config persistence.BusinessHoursConfig
	var workingDays, createdAt, updatedAt string

	err := row.Scan(
		&config.ID,
		&config.Name,
		&config.Timezone,
		&config.OpensAt,
		&config.ClosesAt,
		&workingDays,
		&config.OutsideHoursMessage,
		&config.WeekendMessage,
		&config.HolidayMessage,
		&config.WarningMinutes,
		&config.CutoffMinutes,
		&config.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.BusinessHoursConfig{}, mapError(err)
	}

	if workingDays != "" {
		config.WorkingDays = strings.Split(workingDays, ",")
	}
	if config.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.BusinessHoursConfig{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if config.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.BusinessHoursConfig{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return config, nil
}

func (r *HoursRepository) loadChildren(ctx context.Context, config *persistence.BusinessHoursConfig) error {
	holidayRows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, config_id, date, name, description, recurring
		FROM business_hours_holidays
		WHERE config_id = ?
		ORDER BY date ASC, id ASC`, config.ID)
	if err != nil {
		return mapError(err)
	}
	defer holidayRows.Close()

	for holidayRows.Next() {
		var holiday persistence.Holiday
		var date string
		if err := holidayRows.Scan(&holiday.ID, &holiday.ConfigID, &date, &holiday.Name, &holiday.Description, &holiday.Recurring); err != nil {
			return mapError(err)
		}
		if holiday.Date, err = time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("failed to parse holiday date: %w", err)
		}
		config.Holidays = append(config.Holidays, holiday)
	}
	if err := holidayRows.Err(); err != nil {
		return mapError(err)
	}

	specialRows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, config_id, date, opens_at, closes_at, closed, reason, position
		FROM business_hours_special
		WHERE config_id = ?
		ORDER BY position ASC, id ASC`, config.ID)
	if err != nil {
		return mapError(err)
	}
	defer specialRows.Close()

	for specialRows.Next() {
		var special persistence.SpecialHours
		var date string
		if err := specialRows.Scan(&special.ID, &special.ConfigID, &date, &special.OpensAt, &special.ClosesAt, &special.Closed, &special.Reason, &special.Position); err != nil {
			return mapError(err)
		}
		if special.Date, err = time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("failed to parse special-hours date: %w", err)
		}
		config.SpecialHours = append(config.SpecialHours, special)
	}
	return mapError(specialRows.Err())
}
