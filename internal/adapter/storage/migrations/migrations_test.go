package migrations

import (
	"github.com/stretchr/testify/require"
	"io/fs"
	"testing"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "pgx5://localhost/db"},
		{"pgx5://localhost/db", "pgx5://localhost/db"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			require.Equal(t, tt.want, DatabaseURL(tt.dsn))
		})
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	up, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, up)
	require.Len(t, down, len(up))
}
