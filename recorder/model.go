package recorder

import (
	"time"

	"gorm.io/datatypes"
)

// Models lists the tables migrated on Open.
var Models = []interface{}{
	&Run{},
	&Frame{},
}

// Run is one recorded mission.
type Run struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	ScenarioID    string    `gorm:"size:128;index" json:"scenarioId"`
	Seed          int64     `json:"seed"`
	StepSize      float64   `json:"stepSize"`
	MissionLength float64   `json:"missionLength"`
	Remotes       int       `json:"remotes"`
	Frames        int       `json:"frames"`
}

// Frame is the state of one remote after one step.
type Frame struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	RunID    uint   `gorm:"index:idx_frame_run_remote_step,priority:1" json:"runId"`
	RemoteID string `gorm:"size:128;index:idx_frame_run_remote_step,priority:2" json:"remoteId"`
	Step     int    `gorm:"index:idx_frame_run_remote_step,priority:3" json:"step"`

	Time    float64 `json:"time"`
	Status  string  `gorm:"size:16" json:"status"`
	Enabled bool    `json:"enabled"`
	Active  bool    `json:"active"`
	Done    bool    `json:"done"`

	Located bool    `json:"located"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	VZ      float64 `json:"vz"`

	Fuel    *float64       `json:"fuel"`
	Sensors datatypes.JSON `json:"sensors"`
}
