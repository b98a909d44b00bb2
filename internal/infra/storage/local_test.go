package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"teacher_savings_portal/internal/domain/report"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStore_SaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalFileStore(root)
	require.NoError(t, err)

	upload := &report.Upload{
		ID:       uuid.MustParse("8d1f3c2e-9b7a-4c55-8f1e-2a6b3c4d5e6f"),
		Period:   report.Period{Month: 3, Year: 2025},
		FileName: "../March Report (final).csv",
	}
	location, err := store.Save(context.Background(), upload, []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "2025/03/8d1f3c2e-9b7a-4c55-8f1e-2a6b3c4d5e6f-March_Report_final_.csv", location)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(location)))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	require.NoError(t, store.Remove(context.Background(), location))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(location)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(context.Background(), location), "removing twice is fine")
}

func TestLocalFileStore_RejectsEscapingLocation(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Remove(context.Background(), "../../etc/passwd"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "report", sanitizeName("..."))
	assert.Equal(t, "payroll.xlsx", sanitizeName("/tmp/payroll.xlsx"))
}
