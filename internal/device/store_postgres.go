// Copyright (c) 2026 Herdcount. All rights reserved.

package device

import (
	"context"
	"fmt"
	"time"

	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/database/schema"
	"github.com/herdcount/herdcount/internal/platform/dberr"
	"github.com/herdcount/herdcount/internal/platform/postgres"
)

const resourceDevice = "Device"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	deviceColumns = fmt.Sprintf(`%s, %s, %s, %s, %s, %s`,
		schema.FieldDevice.ID, schema.FieldDevice.Name, schema.FieldDevice.Location,
		schema.FieldDevice.Status, schema.FieldDevice.RegisteredAt, schema.FieldDevice.LastSeenAt,
	)

	insertDeviceQuery = fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.FieldDevice.Table, deviceColumns,
	)

	findDeviceQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		deviceColumns, schema.FieldDevice.Table, schema.FieldDevice.ID,
	)

	listDevicesQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s, %s`,
		deviceColumns, schema.FieldDevice.Table,
		schema.FieldDevice.RegisteredAt, schema.FieldDevice.ID,
	)

	// GREATEST keeps last-seen monotonic when heartbeats race.
	touchDeviceQuery = fmt.Sprintf(`
		UPDATE %s
		SET %s = GREATEST(%s, $2), %s = '%s'
		WHERE %s = $1`,
		schema.FieldDevice.Table,
		schema.FieldDevice.LastSeenAt, schema.FieldDevice.LastSeenAt,
		schema.FieldDevice.Status, StatusActive,
		schema.FieldDevice.ID,
	)

	setDeviceStatusQuery = fmt.Sprintf(`
		UPDATE %s
		SET %s = $2
		WHERE %s = $1
		RETURNING %s`,
		schema.FieldDevice.Table, schema.FieldDevice.Status,
		schema.FieldDevice.ID, deviceColumns,
	)

	deleteDeviceQuery = fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1`,
		schema.FieldDevice.Table, schema.FieldDevice.ID,
	)
)

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(row scanner) (*Device, error) {
	device := &Device{}
	var status string
	if err := row.Scan(
		&device.ID,
		&device.Name,
		&device.Location,
		&status,
		&device.RegisteredAt,
		&device.LastSeen,
	); err != nil {
		return nil, err
	}
	device.Status = Status(status)
	device.RegisteredAt = device.RegisteredAt.UTC()
	device.LastSeen = device.LastSeen.UTC()
	return device, nil
}

// Create inserts a fully populated device into field.device.
func (repository *PostgresRepository) Create(ctx context.Context, device *Device) error {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	_, err := repository.db.Exec(ctx, insertDeviceQuery,
		device.ID,
		device.Name,
		device.Location,
		string(device.Status),
		device.RegisteredAt,
		device.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("postgres_device_repo_create_failed: %w", err)
	}
	return nil
}

/*
FindByID retrieves a device by its id.

Returns:
  - *Device: Hydrated device entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Device, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	device, err := scanDevice(repository.db.QueryRow(ctx, findDeviceQuery, id))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_device_repo_find_failed: %w", err), resourceDevice)
	}
	return device, nil
}

// List returns every device ordered by registration time, then id.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Device, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	rows, err := repository.db.Query(ctx, listDevicesQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres_device_repo_list_failed: %w", err)
	}
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_device_repo_list_scan_failed: %w", err)
		}
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_device_repo_list_failed: %w", err)
	}
	return devices, nil
}

/*
Touch records a heartbeat in a single UPDATE.

Returns:
  - error: apperr.NotFound when no row matched, otherwise database errors
*/
func (repository *PostgresRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	tag, err := repository.db.Exec(ctx, touchDeviceQuery, id, seenAt)
	if err != nil {
		return fmt.Errorf("postgres_device_repo_touch_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceDevice)
	}
	return nil
}

// SetStatus overrides the stored status and returns the updated row.
func (repository *PostgresRepository) SetStatus(ctx context.Context, id string, status Status) (*Device, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	device, err := scanDevice(repository.db.QueryRow(ctx, setDeviceStatusQuery, id, string(status)))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_device_repo_set_status_failed: %w", err), resourceDevice)
	}
	return device, nil
}

// Delete hard-deletes a device. Count events referencing it are kept.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	tag, err := repository.db.Exec(ctx, deleteDeviceQuery, id)
	if err != nil {
		return fmt.Errorf("postgres_device_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceDevice)
	}
	return nil
}
