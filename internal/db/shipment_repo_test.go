package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentCreateAndList(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewShipmentRepo(database.DB)
	s := &Shipment{
		Branch: "curate/add-web-tools",
		Repo:   "malarbase/agent-skills",
		PRURL:  "https://github.com/malarbase/agent-skills/pull/7",
		Skills: []string{"alice/web-tools", "bob/docx"},
	}
	require.NoError(t, repo.Create(s))
	assert.NotZero(t, s.ID)
	assert.Equal(t, ShipmentOpen, s.Status)

	shipments, err := repo.List("", 0)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, []string{"alice/web-tools", "bob/docx"}, shipments[0].Skills)
	assert.Nil(t, shipments[0].MergedAt)
}

func TestShipmentMarkMerged(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewShipmentRepo(database.DB)
	require.NoError(t, repo.Create(&Shipment{
		Branch: "curate/add-web-tools",
		Repo:   "malarbase/agent-skills",
		Skills: []string{"alice/web-tools"},
	}))

	require.NoError(t, repo.MarkMerged("curate/add-web-tools"))

	merged, err := repo.List(ShipmentMerged, 0)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].MergedAt)

	open, err := repo.List(ShipmentOpen, 0)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestShipmentValidation(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewShipmentRepo(database.DB)
	assert.Error(t, repo.Create(&Shipment{Branch: "only-branch"}))
}
