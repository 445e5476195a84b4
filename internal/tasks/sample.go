// Package tasks holds the task units run by the scheduler. Each task has the
// job.Func signature and validates its own bound arguments.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edkuperman/cronzimus/internal/db"
	"github.com/edkuperman/cronzimus/internal/job"
)

// ErrUnexpectedArgs is returned when a task is bound to arguments it cannot use.
var ErrUnexpectedArgs = errors.New("tasks: unexpected arguments")

var _ job.Func = Sample

// Sample is the template task: it expects the shared database as its only
// argument and pings it when a pool is attached.
func Sample(ctx context.Context, args ...any) error {
	database, err := databaseArg(args)
	if err != nil {
		return err
	}

	log := zerolog.Ctx(ctx)
	if database.Connected() {
		if err := database.Ping(ctx); err != nil {
			return fmt.Errorf("tasks: sample: %w", err)
		}
	}
	log.Info().Bool("db_connected", database.Connected()).Msg("task executed successfully")
	return nil
}

func databaseArg(args []any) (*db.Database, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: want 1 argument, got %d", ErrUnexpectedArgs, len(args))
	}
	database, ok := args[0].(*db.Database)
	if !ok || database == nil {
		return nil, fmt.Errorf("%w: want *db.Database, got %T", ErrUnexpectedArgs, args[0])
	}
	return database, nil
}
