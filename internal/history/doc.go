// Package history persists a record of every engine run in SQLite.
//
// Each row captures the drawing, plugin, command, outcome status, exit
// details, and the harvested JSON result so past runs can be listed,
// inspected, and pruned from the CLI. The schema is embedded and versioned;
// a mismatch asks the operator to clear the database rather than migrating.
package history
