package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citedock/internal/core/domain"
)

func TestCaseService_CreateAndList(t *testing.T) {
	api := &fakeCaseAPI{}
	svc := NewCaseService(api, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.NewCase{Title: "Smith v. Jones", Description: "Contract"})
	require.NoError(t, err)
	assert.Equal(t, "case-1", created.ID)

	_, err = svc.Create(ctx, domain.NewCase{Title: "Doe v. Roe"})
	require.NoError(t, err)

	cases, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Smith v. Jones", cases[0].Title)
	assert.Equal(t, "Doe v. Roe", cases[1].Title)
}

func TestCaseService_CreateValidatesBeforeCalling(t *testing.T) {
	api := &fakeCaseAPI{}
	svc := NewCaseService(api, nil)

	_, err := svc.Create(context.Background(), domain.NewCase{})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, api.cases)
}

func TestCaseService_Update(t *testing.T) {
	api := &fakeCaseAPI{cases: []domain.Case{{ID: "case-1", Title: "Old", Description: "keep"}}}
	svc := NewCaseService(api, nil)
	title := "New"

	updated, err := svc.Update(context.Background(), "case-1", domain.CaseUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "keep", updated.Description)

	_, err = svc.Update(context.Background(), "case-9", domain.CaseUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(context.Background(), "case-1", domain.CaseUpdate{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, api.updates, 2)
}

func TestCaseService_DeleteOpenCaseClearsRegistry(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("case-1", mainDoc("m1"), mainDoc("m2"))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	api := &fakeCaseAPI{}
	svc := NewCaseService(api, registry)

	require.NoError(t, svc.Delete(context.Background(), "case-1"))

	assert.Equal(t, []string{"case-1"}, api.deleted)
	assert.Empty(t, registry.Documents())
}

func TestCaseService_DeleteOtherCaseKeepsRegistry(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("case-1", mainDoc("m1"))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	svc := NewCaseService(&fakeCaseAPI{}, registry)

	require.NoError(t, svc.Delete(context.Background(), "case-2"))
	assert.Len(t, registry.Documents(), 1)
}

func TestCaseService_DeleteFailureKeepsRegistry(t *testing.T) {
	backend := newFakeBackend()
	backend.seed("case-1", mainDoc("m1"))
	registry := NewDocumentRegistry(backend, nil)
	require.NoError(t, registry.Load(context.Background(), "case-1"))

	svc := NewCaseService(&fakeCaseAPI{err: fmt.Errorf("delete: %w", domain.ErrNetwork)}, registry)

	err := svc.Delete(context.Background(), "case-1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Len(t, registry.Documents(), 1)
}

func TestCaseService_NotConfigured(t *testing.T) {
	svc := NewCaseService(nil, nil)
	ctx := context.Background()
	title := "t"

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = svc.Create(ctx, domain.NewCase{Title: "t"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = svc.Update(ctx, "case-1", domain.CaseUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.ErrorIs(t, svc.Delete(ctx, "case-1"), domain.ErrNotConfigured)
	assert.ErrorIs(t, svc.Delete(ctx, ""), domain.ErrValidation)
}
