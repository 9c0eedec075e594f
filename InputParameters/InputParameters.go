package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type MeshParameters struct {
	Title           string  `yaml:"Title"`
	NLevels         int     `yaml:"NLevels"`         // number of vertical levels (>= 2)
	BottomPadding   float64 `yaml:"BottomPadding"`   // fraction of the height amplitude below ZMin
	TopPadding      float64 `yaml:"TopPadding"`      // fraction of the height amplitude above ZMax
	IntersectPolicy string  `yaml:"IntersectPolicy"` // "lowest" (default) or "highest"
	ZRef            float64 `yaml:"ZRef"`
	SpeedRef        float64 `yaml:"SpeedRef"`
	DensityRef      float64 `yaml:"DensityRef"`
	Direction       float64 `yaml:"Direction"`
	Shear           float64 `yaml:"Shear"`
	Temperature     float64 `yaml:"Temperature"`
}

func NewMeshParameters() *MeshParameters {
	return &MeshParameters{
		NLevels:         10,
		BottomPadding:   0.1,
		TopPadding:      0.5,
		IntersectPolicy: "lowest",
		ZRef:            500,
		SpeedRef:        6,
		DensityRef:      1.225,
		Shear:           0.2,
		Temperature:     300,
	}
}

func (mp *MeshParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, mp)
}

func (mp *MeshParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", mp.Title)
	fmt.Printf("[%d]\t\t\t= NLevels\n", mp.NLevels)
	fmt.Printf("%8.5f\t\t= BottomPadding\n", mp.BottomPadding)
	fmt.Printf("%8.5f\t\t= TopPadding\n", mp.TopPadding)
	fmt.Printf("[%s]\t\t= Intersect Policy\n", mp.IntersectPolicy)
	fmt.Printf("%8.5f\t\t= ZRef\n", mp.ZRef)
	fmt.Printf("%8.5f\t\t= SpeedRef\n", mp.SpeedRef)
	fmt.Printf("%8.5f\t\t= DensityRef\n", mp.DensityRef)
	fmt.Printf("%8.5f\t\t= Direction\n", mp.Direction)
	fmt.Printf("%8.5f\t\t= Shear\n", mp.Shear)
	fmt.Printf("%8.5f\t\t= Temperature\n", mp.Temperature)
}

type SolverParameters struct {
	Title          string  `yaml:"Title"`
	Tolerance      float64 `yaml:"Tolerance"` // squared-residual tolerance
	MaxIterations  int     `yaml:"MaxIterations"`
	ParallelDegree int     `yaml:"ParallelDegree"` // 0 = number of CPUs
}

func NewSolverParameters() *SolverParameters {
	return &SolverParameters{
		Tolerance:     1.e-10,
		MaxIterations: 1000,
	}
}

func (sp *SolverParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, sp)
}

func (sp *SolverParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("%8.5g\t\t= Tolerance\n", sp.Tolerance)
	fmt.Printf("[%d]\t\t\t= Max Iterations\n", sp.MaxIterations)
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", sp.ParallelDegree)
}
