package layout

import "github.com/coinflip-gg/bracketry"

// Generate dispatches to the algorithm named by stageType.
func Generate(stageType bracketry.StageType, participantIDs []int64, settings bracketry.StageSettings) (*Generated, error) {
	switch stageType {
	case bracketry.StageSingleElimination:
		return GenerateSingleElimination(participantIDs, settings)
	case bracketry.StageDoubleElimination:
		return GenerateDoubleElimination(participantIDs, settings)
	case bracketry.StageRoundRobin:
		return GenerateRoundRobin(participantIDs, settings)
	default:
		return nil, bracketry.NewError(bracketry.ErrInvalidInput, "unknown stage type: "+string(stageType))
	}
}
