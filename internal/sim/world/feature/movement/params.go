package movement

import "kitchencraft.ai/internal/sim/tuning"

type Params struct {
	MoveSpeed   float64 // meters per second
	Radius      float64 // capsule radius
	Height      float64 // distance between capsule sphere centers
	RotateSpeed float64 // slerp rate per second
}

func DefaultParams() Params {
	return ParamsFromTuning(tuning.Defaults().Player)
}

func ParamsFromTuning(p tuning.Player) Params {
	return Params{
		MoveSpeed:   p.MoveSpeed,
		Radius:      p.Radius,
		Height:      p.Height,
		RotateSpeed: p.RotateSpeed,
	}
}
