package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/catalog-sync/internal/adapters/logger"
	"github.com/athebyme/catalog-sync/internal/domain/models"
)

func TestCredentialService_GetAPIKey(t *testing.T) {
	svc := NewCredentialService(&fakeCredentials{keys: map[string]string{testShop: "k-1"}}, logger.NewNop())

	cred, err := svc.GetAPIKey(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, "k-1", cred.APIKey)

	_, err = svc.GetAPIKey(context.Background(), "other.myshopify.com")
	var nf *models.CredentialNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "other.myshopify.com", nf.ShopDomain)
}

func TestCredentialService_StoreError(t *testing.T) {
	svc := NewCredentialService(&fakeCredentials{err: errors.New("db down")}, logger.NewNop())

	_, err := svc.GetAPIKey(context.Background(), testShop)
	require.Error(t, err)
	assert.Equal(t, models.KindUnknown, models.Classify(err))
}

func TestCredentialService_SaveAPIKey(t *testing.T) {
	repo := &fakeCredentials{}
	svc := NewCredentialService(repo, logger.NewNop())

	_, err := svc.SaveAPIKey(context.Background(), testShop, "   ")
	assert.ErrorIs(t, err, ErrEmptyAPIKey)

	cred, err := svc.SaveAPIKey(context.Background(), testShop, " k-2 ")
	require.NoError(t, err)
	assert.Equal(t, "k-2", cred.APIKey)
	assert.Equal(t, "k-2", repo.keys[testShop])
}
