package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	id := uuid.MustParse("7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e")
	at := time.Date(2026, 3, 7, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		prefix string
		file   string
		want   string
	}{
		{"plain", "uploads", "orders.csv", "uploads/2026/03/07/7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e-orders.csv"},
		{"slashes trimmed", "/uploads/", "orders.xlsx", "uploads/2026/03/07/7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e-orders.xlsx"},
		{"path stripped", "uploads", "../../etc/orders.csv", "uploads/2026/03/07/7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e-orders.csv"},
		{"windows path", "uploads", `C:\Users\ops\orders.csv`, "uploads/2026/03/07/7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e-orders.csv"},
		{"empty name", "uploads", "", "uploads/2026/03/07/7f1c3a52-7d61-4c38-9c61-7e5b9a0c1d2e-upload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveKey(tt.prefix, tt.file, at, id))
		})
	}
}

func TestArchiveKey_UsesUTCDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, 3, 8, 2, 0, 0, 0, ist)
	key := ArchiveKey("uploads", "a.csv", at, uuid.New())
	assert.True(t, strings.HasPrefix(key, "uploads/2026/03/07/"))
}

func TestNoopArchive(t *testing.T) {
	key, err := NoopArchive{}.Archive(context.Background(), "a.csv", strings.NewReader("x"), "text/csv")
	require.NoError(t, err)
	assert.Empty(t, key)
}
