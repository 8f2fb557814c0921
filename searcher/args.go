package searcher

// Hyperparameters for MCTS

const Exploration = 12.5 // Exploration constant C

// The exploration bonus of a node at depth l is scaled by
// max(DecayFloor, (100 - l*DecayRate) / 100).
const DecayFloor = 0.16
const DecayRate = 0.5

const DefaultCutoff = 1000 // Depth charge length when no step counter is found

// Goal values bounding utilities
const Win = 100.0
const Loss = 0.0

// Utilities at or below NoSignal carry no information for move choice
const NoSignal = 1e-9
