package history

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historyLayout is kept in PRAGMA user_version. Bump it whenever schema.sql changes.
const historyLayout = 1

// ensureLayout builds the runs table on first use. Run history is a local log
// of past invocations, so a database written with another layout is rebuilt
// instead of migrated and its runs are discarded.
func (s *Store) ensureLayout(ctx context.Context) error {
	current, err := s.layout(ctx)
	if err != nil {
		return err
	}
	if current == historyLayout {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("build runs table: %w", err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyLayout)); err != nil {
		return fmt.Errorf("stamp history layout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history rebuild: %w", err)
	}
	return nil
}

func (s *Store) layout(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read history layout: %w", err)
	}
	return version, nil
}
