// meta/meta.go
package meta

import "time"

// GO_ROUTINES defines the number of depth charge workers.
const GO_ROUTINES = 1

// CHARGES defines the depth charges each worker runs per cycle.
const CHARGES = 1

// WITH_CUTOFF bounds depth charges when no step counter is detected.
const WITH_CUTOFF = 1000

// MAX_TURNS stops a local match that never reaches a terminal state.
const MAX_TURNS = 300

const EXPLORATION = 12.5

const DECAY_FLOOR = 0.16

// DECAY_RATE is the percentage of exploration lost per tree level.
const DECAY_RATE = 0.5

// MIN_CORRELATION is the weakest correlation a heuristic signal may have.
const MIN_CORRELATION = 0.30

const MIN_SAMPLES = 10

// CALIBRATION_SHARE is the share of the remaining start clock spent
// calibrating heuristics.
const CALIBRATION_SHARE = 0.5

// SAFETY_BUFFER is subtracted from every deadline the harness gives us.
const SAFETY_BUFFER = 2500 * time.Millisecond

const SOLVER_PATH = "clingo"

const SOLVER_MARGIN = 1500 * time.Millisecond

const START_CLOCK = 10 * time.Second

const PLAY_CLOCK = 5 * time.Second
