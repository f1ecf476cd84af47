package docstore

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendMemory, nil, "", "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, BackendPostgres, nil, "", "", zerolog.Nop())
	assert.Error(t, err)

	_, err = Open(ctx, BackendFirestore, nil, "", "", zerolog.Nop())
	assert.Error(t, err)

	_, err = Open(ctx, "mongo", nil, "", "", zerolog.Nop())
	assert.ErrorContains(t, err, "unknown backend")
}
