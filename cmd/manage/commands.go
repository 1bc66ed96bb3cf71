// Copyright (c) 2026 Herdcount. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/herdcount/herdcount/internal/auth"
	"github.com/herdcount/herdcount/internal/count"
	"github.com/herdcount/herdcount/internal/device"
	"github.com/herdcount/herdcount/internal/platform/apperr"
	"github.com/herdcount/herdcount/internal/platform/clock"
	"github.com/herdcount/herdcount/internal/platform/config"
	"github.com/herdcount/herdcount/internal/platform/migration"
	"github.com/herdcount/herdcount/internal/platform/postgres"
	"github.com/herdcount/herdcount/pkg/slice"
	"github.com/herdcount/herdcount/pkg/uuidv7"
)

// # Command Table

type command struct {
	summary     string
	destructive bool
	needsPool   bool
	run         func(ctx context.Context, env *environment) error
}

var commands = map[string]command{
	"create":   {summary: "apply all pending migrations", run: createSchema},
	"drop":     {summary: "roll back every migration (requires --yes)", destructive: true, run: dropSchema},
	"reset":    {summary: "drop then create (requires --yes)", destructive: true, run: resetSchema},
	"users":    {summary: "list operator accounts", needsPool: true, run: showUsers},
	"counts":   {summary: "list count events, newest first", needsPool: true, run: showCounts},
	"devices":  {summary: "list devices with liveness", needsPool: true, run: showDevices},
	"testuser": {summary: "create an operator (--username, --password)", needsPool: true, run: createTestUser},
	"seed":     {summary: "insert demo devices and counts in one transaction", needsPool: true, run: seedDemoData},
}

// # Environment

// environment holds what a command may use. pool is nil for schema commands.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	opts   options
	clock  clock.Clock
	pool   *pgxpool.Pool
}

func newEnvironment(ctx context.Context, logger *slog.Logger, out io.Writer, opts options, needsPool bool) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg, logger: logger, out: out, opts: opts, clock: clock.Real()}
	if needsPool {
		env.pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
	}
	return env, nil
}

func (env *environment) close() {
	if env.pool != nil {
		env.pool.Close()
	}
}

func (env *environment) authService() *auth.Service {
	return auth.NewService(auth.NewUserRepository(env.pool), nil, auth.ThrottleConfig{}, env.clock, nil)
}

// # Schema Commands

func createSchema(_ context.Context, env *environment) error {
	if err := migration.RunUp(env.cfg.DatabaseURL, env.cfg.MigrationPath, env.logger); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Database schema created.")
	return nil
}

func dropSchema(_ context.Context, env *environment) error {
	if err := migration.RunDown(env.cfg.DatabaseURL, env.cfg.MigrationPath, env.logger); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Database schema dropped.")
	return nil
}

func resetSchema(ctx context.Context, env *environment) error {
	if err := migration.RunDown(env.cfg.DatabaseURL, env.cfg.MigrationPath, env.logger); err != nil {
		return err
	}
	if err := migration.RunUp(env.cfg.DatabaseURL, env.cfg.MigrationPath, env.logger); err != nil {
		return err
	}
	fmt.Fprintln(env.out, "Database schema reset.")
	return nil
}

// # Listing Commands

func showUsers(ctx context.Context, env *environment) error {
	users, err := env.authService().ListUsers(ctx)
	if err != nil {
		return err
	}
	return printUsers(env.out, users)
}

func showCounts(ctx context.Context, env *environment) error {
	events, err := count.NewService(count.NewRepository(env.pool), env.clock, env.cfg.Location(), nil).ListAll(ctx)
	if err != nil {
		return err
	}
	return printCounts(env.out, events, env.opts.limit)
}

func showDevices(ctx context.Context, env *environment) error {
	views, err := device.NewService(device.NewRepository(env.pool), env.clock, env.cfg.DeviceStaleAfter, nil).List(ctx)
	if err != nil {
		return err
	}
	return printDevices(env.out, views)
}

// # Data Commands

func createTestUser(ctx context.Context, env *environment) error {
	err := env.authService().Register(ctx, auth.RegisterInput{
		Username: env.opts.username,
		Password: env.opts.password,
	})
	if apperr.HasCode(err, apperr.CodeAlreadyExists) {
		fmt.Fprintf(env.out, "User %q already exists.\n", env.opts.username)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.out, "Test user created.\nUsername: %s\nPassword: %s\n", env.opts.username, env.opts.password)
	return nil
}

var demoAnimals = []string{"sheep", "cattle", "goat"}

// seedDemoData writes every demo row or none.
func seedDemoData(ctx context.Context, env *environment) error {
	now := env.clock.Now().UTC()

	var devices, events int
	err := postgres.WithTx(ctx, env.pool, func(ctx context.Context, tx postgres.DBTX) error {
		deviceRepository := device.NewRepository(tx)
		countRepository := count.NewRepository(tx)

		for i := 0; i < env.opts.devices; i++ {
			d := demoDevice(i, now)
			if err := deviceRepository.Create(ctx, d); err != nil {
				return err
			}
			devices++

			for j := 0; j < env.opts.events; j++ {
				if err := countRepository.Insert(ctx, demoEvent(d.ID, i, j, now)); err != nil {
					return err
				}
				events++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed failed, nothing was written: %w", err)
	}

	fmt.Fprintf(env.out, "Seeded %d devices and %d count events.\n", devices, events)
	return nil
}

func demoDevice(index int, now time.Time) *device.Device {
	return &device.Device{
		ID:           uuidv7.New(),
		Name:         fmt.Sprintf("Demo device %d", index+1),
		Location:     fmt.Sprintf("Paddock %d", index+1),
		Status:       device.StatusActive,
		RegisteredAt: now,
		LastSeen:     now,
	}
}

// demoEvent spreads events one hour apart going back from now.
func demoEvent(deviceID string, deviceIndex, eventIndex int, now time.Time) *count.Event {
	return &count.Event{
		ID:         uuidv7.New(),
		DeviceID:   deviceID,
		Count:      int64(1 + (deviceIndex+eventIndex)%5),
		AnimalType: demoAnimals[(deviceIndex+eventIndex)%len(demoAnimals)],
		Timestamp:  now.Add(-time.Duration(eventIndex) * time.Hour),
	}
}

// # Printers

const timeLayout = "2006-01-02 15:04:05Z07:00"

func printUsers(out io.Writer, users []*auth.User) error {
	fmt.Fprintf(out, "Total users: %d\n\n", len(users))

	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tUSERNAME\tCREATED")
	for _, user := range users {
		fmt.Fprintf(table, "%s\t%s\t%s\n", user.ID, user.Username, user.CreatedAt.UTC().Format(timeLayout))
	}
	return table.Flush()
}

func printCounts(out io.Writer, events []*count.Event, limit int) error {
	total := slice.Reduce(events, int64(0), func(sum int64, event *count.Event) int64 {
		return sum + event.Count
	})
	fmt.Fprintf(out, "Total records: %d\nTotal animals: %d\n\n", len(events), total)

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tDEVICE\tCOUNT\tTYPE\tTIMESTAMP")
	for _, event := range events {
		fmt.Fprintf(table, "%s\t%s\t%d\t%s\t%s\n",
			event.ID, event.DeviceID, event.Count, event.AnimalType, event.Timestamp.UTC().Format(timeLayout))
	}
	return table.Flush()
}

func printDevices(out io.Writer, views []device.View) error {
	fmt.Fprintf(out, "Total devices: %d\n\n", len(views))

	table := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tLOCATION\tSTATUS\tLIVENESS\tLAST SEEN")
	for _, view := range views {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
			view.ID, view.Name, view.Location, view.Status, view.Liveness, view.LastSeen.UTC().Format(timeLayout))
	}
	return table.Flush()
}
