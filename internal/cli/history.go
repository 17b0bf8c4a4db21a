package cli

import (
	"github.com/malarbase/skillctl/internal/db"
)

// The history database is advisory: commands record what they did, but a
// missing or broken database never fails the operation itself.

// recordActivity appends an activity log entry, ignoring storage errors.
func recordActivity(action, skill, author, details string) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		VerboseOutput("Warning: history database unavailable: %v\n", err)
		return
	}
	defer database.Close()

	repo := db.NewActivityRepo(database.DB)
	if err := repo.Log(action, skill, author, details); err != nil {
		VerboseOutput("Warning: failed to record activity: %v\n", err)
	}
}

// recordShipment stores a shipment record, ignoring storage errors.
func recordShipment(s *db.Shipment) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		VerboseOutput("Warning: history database unavailable: %v\n", err)
		return
	}
	defer database.Close()

	repo := db.NewShipmentRepo(database.DB)
	if err := repo.Create(s); err != nil {
		VerboseOutput("Warning: failed to record shipment: %v\n", err)
	}
}

// markShipmentMerged flags the open shipment for branch as merged,
// ignoring storage errors.
func markShipmentMerged(branch string) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return
	}
	defer database.Close()

	repo := db.NewShipmentRepo(database.DB)
	if err := repo.MarkMerged(branch); err != nil {
		VerboseOutput("Warning: failed to update shipment: %v\n", err)
	}
}
