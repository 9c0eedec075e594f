/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/terraflow-cfd/terraflow/InputParameters"
	"github.com/terraflow-cfd/terraflow/sparse"
)

type SolveRun struct {
	MatrixFile string
	RHSFile    string
	GuessFile  string
	OutFile    string
	ParamsFile string
	Profile    bool
}

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a sparse linear system with the row-parallel fixed-point iteration",
	Long: `
Loads a coefficient matrix in plain-text COO format (one "row col value"
triple per line) and a dense right-hand side (one value per line), runs the
diagonal-dominance precheck and the iterative solve, and reports the result.

terraflow solve -m matrix.coo -b rhs.txt -p solver.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		sr := &SolveRun{}
		sr.MatrixFile, _ = cmd.Flags().GetString("matrixFile")
		sr.RHSFile, _ = cmd.Flags().GetString("rhsFile")
		sr.GuessFile, _ = cmd.Flags().GetString("guessFile")
		sr.OutFile, _ = cmd.Flags().GetString("outFile")
		sr.ParamsFile, _ = cmd.Flags().GetString("paramsFile")
		sr.Profile, _ = cmd.Flags().GetBool("profile")
		if len(sr.MatrixFile) == 0 || len(sr.RHSFile) == 0 {
			fmt.Println("error: must supply a matrix file (-m) and a right-hand-side file (-b)")
			os.Exit(1)
		}
		sp := InputParameters.NewSolverParameters()
		if len(sr.ParamsFile) != 0 {
			data, err := os.ReadFile(sr.ParamsFile)
			if err != nil {
				panic(err)
			}
			if err = sp.Parse(data); err != nil {
				panic(err)
			}
		}
		if sr.Profile {
			defer profile.Start().Stop()
		}
		RunSolve(sr, sp)
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("matrixFile", "m", "", "coefficient matrix in plain-text COO format")
	SolveCmd.Flags().StringP("rhsFile", "b", "", "right-hand-side vector, one value per line")
	SolveCmd.Flags().StringP("guessFile", "g", "", "optional initial guess vector (default all zeros)")
	SolveCmd.Flags().StringP("outFile", "o", "", "optional output file for the solution vector")
	SolveCmd.Flags().StringP("paramsFile", "p", "", "YAML file with solver parameters")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile for the solve")
}

func RunSolve(sr *SolveRun, sp *InputParameters.SolverParameters) {
	matrix, err := sparse.Load(sr.MatrixFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	rhs, err := sparse.LoadVector(sr.RHSFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	x0 := make([]float64, matrix.NRows)
	if len(sr.GuessFile) != 0 {
		if x0, err = sparse.LoadVector(sr.GuessFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}

	system := sparse.NewSystem(matrix, rhs)
	res := system.Solve(x0, sp.Tolerance, sp.MaxIterations, sp.ParallelDegree)
	printResult(res)

	if res.Solution != nil && len(sr.OutFile) != 0 {
		if err = sparse.SaveVector(res.Solution, sr.OutFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	}
	if !res.Converged {
		os.Exit(2)
	}
}

func printResult(res sparse.Result) {
	fmt.Printf("converged\t\t= %v\n", res.Converged)
	if res.DiagDominance != nil {
		fmt.Printf("diagonally dominant\t= %v\n", *res.DiagDominance)
	}
	fmt.Printf("iterations\t\t= %d\n", res.Iters)
	fmt.Printf("tolerance\t\t= %g\n", res.Tol)
	if res.Residual != nil {
		fmt.Printf("residual |Ax-b|^2\t= %g\n", *res.Residual)
	}
	fmt.Printf("max iters reached\t= %v\n", res.MaxItersReached)
	fmt.Printf("elapsed\t\t\t= %v\n", res.Elapsed)
	fmt.Printf("%s\n", res.Message)
}
