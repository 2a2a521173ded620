package pipeline

// History sizing
const (
	minHistoryCapacity = 64
	bufferGrowthFactor = 2
)
