package core

import (
	"github.com/encodeous/ripsim/state"
)

func AddCost(a, b uint32) uint32 {
	if a >= state.INF || b >= state.INF {
		return state.INF
	}
	return state.NormalizeCost(a + b)
}
