package postgres

import (
	"strings"
	"testing"
)

func TestSchemaSQL_NotEmpty(t *testing.T) {
	t.Parallel()

	if schemaSQL == "" {
		t.Fatal("embedded schema.sql is empty")
	}

	for _, table := range []string{"users", "chats", "memberships", "messages", "invites", "sessions"} {
		if !strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema.sql missing CREATE TABLE for %q", table)
		}
	}
}
