package main

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var createTableRe = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\n\);`)

func tableBodies(t *testing.T) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, m := range createTableRe.FindAllStringSubmatch(schema, -1) {
		out[m[1]] = m[2]
	}
	require.NotEmpty(t, out, "no CREATE TABLE statements found in schema")
	return out
}

// The chart-of-accounts repository reads and writes updated_at on groups,
// subgroups and ledgers, so the shipped DDL must declare it.
func TestSchemaDeclaresAuditColumns(t *testing.T) {
	tables := tableBodies(t)
	for _, name := range []string{"account_groups", "account_subgroups", "ledgers"} {
		body, ok := tables[name]
		require.True(t, ok, "schema is missing table %s", name)
		require.Contains(t, body, "created_at", "table %s", name)
		require.Contains(t, body, "updated_at", "table %s", name)
	}
}

// Constraint names are load-bearing: the repositories match on them when
// translating postgres errors.
func TestSchemaDeclaresNamedConstraints(t *testing.T) {
	for _, name := range []string{
		"uq_account_groups_name",
		"uq_account_subgroups_name",
		"uq_ledgers_name",
		"ck_ledgers_one_parent",
		"uq_vouchers_number",
		"uq_vouchers_source_ref",
	} {
		require.Contains(t, schema, name)
	}
}
