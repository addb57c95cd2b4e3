package pipeline

// hermiteTaps is the neighbourhood a 4-point Hermite read touches.
const hermiteTaps = 4
