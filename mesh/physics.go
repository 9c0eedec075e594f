package mesh

import (
	"math"

	"github.com/terraflow-cfd/terraflow/geometry"
	"github.com/terraflow-cfd/terraflow/utils"
)

const (
	densityLapseRate     = -0.0013
	temperatureLapseRate = -0.0065
	universalGasConstant = 8.31432
	gravity              = 9.80665
	airMolarMass         = 0.0289644
	pressureSeaLevel     = 101325.0
	temperatureSeaLevel  = 20.0 + 273.15
	calorificCapacityV   = 1214.0
)

// Physics is the per-cell flow state. The mesh topology never reads it; it is
// overwritten wholesale by the initial/boundary-condition pass and later by
// the flow solver.
type Physics struct {
	Velocity    geometry.Vec3
	Pressure    float64
	Temperature float64
	Density     float64
	Energy      float64
}

// AtmosphereParams drives the closed-form atmospheric profile used to seed
// the field: a lapse-rate pressure column and a power-law wind shear about a
// reference height.
type AtmosphereParams struct {
	ZRef        float64 // reference height for the wind profile [m]
	SpeedRef    float64 // wind speed at ZRef [m/s]
	DensityRef  float64 // reference air density [kg/m3]
	Direction   float64 // wind direction [deg]
	Shear       float64 // power-law shear exponent
	Temperature float64 // uniform temperature [K]
}

func atmosphereAt(ic AtmosphereParams, height float64) (p Physics) {
	var (
		pressPower = -gravity * airMolarMass / (universalGasConstant * temperatureLapseRate)
		deltaZ     = height - ic.ZRef
		rads       = ic.Direction * math.Pi / 180
		uRef       = ic.SpeedRef * math.Cos(rads)
		vRef       = ic.SpeedRef * math.Sin(rads)
		u          = uRef * math.Pow(height/ic.ZRef, ic.Shear)
		v          = vRef * math.Pow(height/ic.ZRef, ic.Shear)
	)
	p = Physics{
		Velocity:    geometry.Vec3{X: u, Y: v},
		Pressure:    pressureSeaLevel * math.Pow(1+temperatureLapseRate/temperatureSeaLevel*height, pressPower),
		Temperature: ic.Temperature,
		Density:     ic.DensityRef * deltaZ * densityLapseRate,
		Energy:      0.5*(u*u+v*v) + calorificCapacityV*ic.Temperature,
	}
	return
}

// ApplyInitialConditions overwrites every cell's and wall's physics payload
// from the atmospheric profile, evaluated at the cell or wall center height.
// Terrain walls get the no-slip condition, Sky walls lose their vertical
// component. Cells are independent, so the pass runs row-parallel.
func (m *Mesh) ApplyInitialConditions(ic AtmosphereParams) {
	pm := utils.NewPartitionMap(0, len(m.Cells))
	pm.RunParallel(func(kMin, kMax int) {
		for n := kMin; n < kMax; n++ {
			cell := &m.Cells[n]
			cell.Physics = atmosphereAt(ic, cell.Center.Z)
			for w := range cell.Walls {
				wall := &cell.Walls[w]
				physics := atmosphereAt(ic, wall.Center.Z)
				switch wall.Kind {
				case Terrain:
					physics.Velocity = geometry.Vec3{}
				case Sky:
					physics.Velocity.Z = 0
				}
				wall.Physics = physics
			}
		}
	})
}
