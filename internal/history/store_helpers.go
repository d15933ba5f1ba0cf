package history

import (
	"database/sql"
	"strings"
	"time"
)

// storedTimeLayout keeps a fixed width so timestamps sort lexically.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, drawing, plugin, command, status, exit_code, pid, duration_ms, result_json, output_path, error_message, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           string
		drawing      string
		plugin       string
		command      string
		statusStr    string
		exitCode     sql.NullInt64
		pid          sql.NullInt64
		durationMS   int64
		resultJSON   sql.NullString
		outputPath   sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  string
	)

	if err := scanner.Scan(
		&id,
		&drawing,
		&plugin,
		&command,
		&statusStr,
		&exitCode,
		&pid,
		&durationMS,
		&resultJSON,
		&outputPath,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Drawing:      drawing,
		Plugin:       plugin,
		Command:      command,
		Status:       Status(statusStr),
		PID:          int(pid.Int64),
		Duration:     time.Duration(durationMS) * time.Millisecond,
		ResultJSON:   resultJSON.String,
		OutputPath:   outputPath.String,
		ErrorMessage: errorMessage.String,
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	if ts, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = ts
	}
	if ts, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = ts
	}
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
