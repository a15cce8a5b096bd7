package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBatch_AllCases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := processBatch(ctx, env.Pipeline, env.Pipeline.CaseIDs(), 0, 2)
	require.NoError(t, err)

	decisions, err := env.Ledger.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, decisions, 2)

	// Sequential IDs survive concurrent case processing.
	seen := map[string]bool{}
	for _, d := range decisions {
		seen[d.DecisionID] = true
	}
	assert.True(t, seen["DEC00001"])
	assert.True(t, seen["DEC00002"])
}

func TestProcessBatch_Limit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := processBatch(ctx, env.Pipeline, env.Pipeline.CaseIDs(), 1, 2)
	require.NoError(t, err)

	decisions, err := env.Ledger.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)
}

func TestProcessBatch_UnknownCaseDoesNotAbort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := processBatch(ctx, env.Pipeline, []string{"UNKNOWN_ID", "CASE001"}, 0, 1)
	require.NoError(t, err)

	decisions, err := env.Ledger.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)
	assert.Equal(t, "CASE001", decisions[0].CaseID)
}

func TestProcessBatch_Empty(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, processBatch(context.Background(), env.Pipeline, nil, 0, 2))
}
