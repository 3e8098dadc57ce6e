package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/2beens/gymtracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCachedStore_ReadThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockStore(ctrl)
	ctx := context.Background()

	next.EXPECT().
		Load(gomock.Any(), storage.KeyWorkouts).
		Return([]byte(`[]`), nil).
		Times(1)

	store := storage.NewCachedStore(next, 1)
	for i := 0; i < 3; i++ {
		blob, err := store.Load(ctx, storage.KeyWorkouts)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(blob))
	}
}

func TestCachedStore_NotFoundIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockStore(ctrl)
	ctx := context.Background()

	next.EXPECT().
		Load(gomock.Any(), storage.KeyExercises).
		Return(nil, storage.ErrNotFound).
		Times(2)

	store := storage.NewCachedStore(next, 1)
	_, err := store.Load(ctx, storage.KeyExercises)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Load(ctx, storage.KeyExercises)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCachedStore_WriteThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := NewMockStore(ctrl)
	ctx := context.Background()

	gomock.InOrder(
		next.EXPECT().Save(gomock.Any(), storage.KeyWorkouts, []byte(`[1]`)).Return(nil),
		next.EXPECT().Save(gomock.Any(), storage.KeyWorkouts, []byte(`[1,2]`)).Return(errors.New("disk full")),
		next.EXPECT().Load(gomock.Any(), storage.KeyWorkouts).Return([]byte(`[1]`), nil),
		next.EXPECT().Close().Return(nil),
	)

	store := storage.NewCachedStore(next, 1)
	require.NoError(t, store.Save(ctx, storage.KeyWorkouts, []byte(`[1]`)))

	// served from cache
	blob, err := store.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(blob))

	// a failed save drops the cached value, the next load goes to the backing store
	require.Error(t, store.Save(ctx, storage.KeyWorkouts, []byte(`[1,2]`)))
	blob, err = store.Load(ctx, storage.KeyWorkouts)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(blob))

	require.NoError(t, store.Close())
}
