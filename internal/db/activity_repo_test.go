package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityCreateAndList(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewActivityRepo(database.DB)
	require.NoError(t, repo.Log(ActionImport, "web-tools", "alice", "from owner/repo"))
	require.NoError(t, repo.Log(ActionShip, "web-tools", "alice", ""))

	logs, err := repo.List(ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// Newest first
	assert.Equal(t, ActionShip, logs[0].Action)
	assert.Equal(t, ActionImport, logs[1].Action)
	assert.Equal(t, "web-tools", logs[1].Skill)
	assert.Equal(t, "from owner/repo", logs[1].Details)
	assert.WithinDuration(t, time.Now(), logs[0].CreatedAt, time.Minute)
}

func TestActivityFilterByAction(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewActivityRepo(database.DB)
	require.NoError(t, repo.Log(ActionImport, "a", "alice", ""))
	require.NoError(t, repo.Log(ActionInstall, "b", "bob", ""))

	logs, err := repo.List(ActivityFilter{Action: ActionInstall})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "b", logs[0].Skill)
}

func TestActivityFilterBySkillAndLimit(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewActivityRepo(database.DB)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Log(ActionUpdate, "same-skill", "alice", ""))
	}

	logs, err := repo.List(ActivityFilter{Skill: "same-skill", Limit: 3})
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestActivityRequiresAction(t *testing.T) {
	database := NewTestDB(t)
	defer database.Close()

	repo := NewActivityRepo(database.DB)
	err := repo.Create(&ActivityLog{})
	assert.Error(t, err)
}
