package dialects

// GasCost is the price of one instruction or native function.
type GasCost struct {
	Instruction uint64
	Memory      uint64
}

// CostTable is the gas schedule handed to an execution backend. The
// front-end only carries it.
type CostTable struct {
	Instructions []GasCost
	Natives      []GasCost
	MaxGas       uint64
}

const (
	instructionCount = 68
	nativeCount      = 24
)

// ZeroCostTable charges nothing for any instruction.
func ZeroCostTable(maxGas uint64) CostTable {
	return CostTable{
		Instructions: make([]GasCost, instructionCount),
		Natives:      make([]GasCost, nativeCount),
		MaxGas:       maxGas,
	}
}
