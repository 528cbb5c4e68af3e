// internal/workers/cleanup_processor_test.go
package workers_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/flowershop-pos/internal/adapters/storage"
	"github.com/ammerola/flowershop-pos/internal/workers"
	"github.com/ammerola/flowershop-pos/test/helpers"
	"github.com/ammerola/flowershop-pos/test/mocks"
)

func TestCleanupProcessor_CleanupTempFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.xlsx")
	fresh := filepath.Join(dir, "fresh.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	processor := workers.NewCleanupProcessor(nil, workers.CleanupConfig{TempDir: dir}, helpers.TestLogger())
	require.NoError(t, processor.CleanupTempFiles(context.Background(), nil))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestCleanupProcessor_CleanupTempFiles_MissingDir(t *testing.T) {
	processor := workers.NewCleanupProcessor(nil, workers.CleanupConfig{
		TempDir: filepath.Join(t.TempDir(), "gone"),
	}, helpers.TestLogger())

	assert.NoError(t, processor.CleanupTempFiles(context.Background(), nil))
}

func TestCleanupProcessor_CleanupExports(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir(), helpers.TestLogger())
	require.NoError(t, err)

	now := time.Now().UTC()
	expired := workers.ExportKey("exports", now.AddDate(0, 0, -40), "old", workers.ExportCSV)
	current := workers.ExportKey("exports", now, "new", workers.ExportCSV)
	stray := "exports/readme.txt"

	for _, key := range []string{expired, current, stray} {
		_, err := store.Upload(ctx, key, bytes.NewReader([]byte("x")), "text/plain")
		require.NoError(t, err)
	}

	processor := workers.NewCleanupProcessor(store, workers.CleanupConfig{
		ExportPrefix:    "exports",
		ExportRetention: 30 * 24 * time.Hour,
	}, helpers.TestLogger())
	require.NoError(t, processor.CleanupExports(ctx, nil))

	keys, err := store.List(ctx, "exports/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{current, stray}, keys)
}

func TestCleanupProcessor_CleanupExports_Failures(t *testing.T) {
	old := workers.ExportKey("exports", time.Now().AddDate(0, 0, -90), "old", workers.ExportXLSX)

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockFileStorage)
		expectedError string
	}{
		{
			name: "list_fails",
			setupMocks: func(s *mocks.MockFileStorage) {
				s.EXPECT().List(gomock.Any(), "exports/").Return(nil, errors.New("timeout"))
			},
			expectedError: "failed to list exports",
		},
		{
			name: "delete_fails",
			setupMocks: func(s *mocks.MockFileStorage) {
				s.EXPECT().List(gomock.Any(), "exports/").Return([]string{old}, nil)
				s.EXPECT().Delete(gomock.Any(), old).Return(errors.New("access denied"))
			},
			expectedError: "failed to delete 1 of 1 expired exports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			files := mocks.NewMockFileStorage(ctrl)
			tt.setupMocks(files)

			processor := workers.NewCleanupProcessor(files, workers.CleanupConfig{
				ExportPrefix:    "exports",
				ExportRetention: 24 * time.Hour,
			}, helpers.TestLogger())

			err := processor.CleanupExports(context.Background(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestCleanupProcessor_CleanupExports_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := workers.NewCleanupProcessor(mocks.NewMockFileStorage(ctrl), workers.CleanupConfig{
		ExportPrefix: "exports",
	}, helpers.TestLogger())

	assert.NoError(t, processor.CleanupExports(context.Background(), nil))
}
