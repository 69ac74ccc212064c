// Package database manages the bun connection used by the repositories:
// YAML configuration with environment overrides and validation, a connection
// manager for mysql, postgres and sqlite, query logging hooks, SQL error
// classification and table creation for registered models.
package database
