// Package glpk solves mip.Model instances with the GNU Linear Programming
// Kit through the lukpank/go-glpk binding.
package glpk

import (
	"fmt"
	"math"

	"github.com/lukpank/go-glpk/glpk"

	"github.com/jsundin/tcrplan/core/logger"
	"github.com/jsundin/tcrplan/core/mip"
)

// Solver implements mip.Solver on top of GLPK's simplex and branch-and-cut.
type Solver struct {
	log logger.Logger
}

// New returns a GLPK-backed solver.
func New(log logger.Logger) *Solver {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Solver{log: log}
}

// Solve translates the model into a GLPK problem, runs simplex followed by
// the integer optimizer and maps the terminal status back.
func (s *Solver) Solve(m *mip.Model, opts mip.Options) (mip.Solution, error) {
	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName(m.Name())
	lp.SetObjDir(glpk.ObjDir(glpk.MIN))

	// The binding exposes neither a wall-clock limit nor a gap parameter;
	// the solver runs to completion.
	if opts.TimeLimit > 0 || opts.Gap > 0 {
		s.log.Warnf("glpk binding ignores time limit and gap options")
	}

	for i := 0; i < m.NumVars(); i++ {
		def := m.VarDef(mip.Var(i))
		col := i + 1
		lp.AddCols(1)
		lp.SetColName(col, def.Name)
		switch def.Type {
		case mip.Binary:
			lp.SetColKind(col, glpk.VarType(glpk.BV))
		case mip.Integer:
			lp.SetColKind(col, glpk.VarType(glpk.IV))
			lp.SetColBnds(col, boundsType(def.Lo, def.Hi), def.Lo, def.Hi)
		default:
			lp.SetColBnds(col, boundsType(def.Lo, def.Hi), def.Lo, def.Hi)
		}
	}

	for _, t := range m.Objective() {
		lp.SetObjCoef(int(t.Var)+1, t.Coef)
	}

	for ri, c := range m.Constraints() {
		row := ri + 1
		lp.AddRows(1)
		lp.SetRowName(row, c.Name)
		switch c.Sense {
		case mip.LessEq:
			lp.SetRowBnds(row, glpk.BndsType(glpk.UP), 0, c.RHS)
		case mip.GreaterEq:
			lp.SetRowBnds(row, glpk.BndsType(glpk.LO), c.RHS, 0)
		case mip.Equal:
			lp.SetRowBnds(row, glpk.BndsType(glpk.FX), c.RHS, c.RHS)
		}
		ind := make([]int32, len(c.Terms))
		val := make([]float64, len(c.Terms))
		for i, t := range c.Terms {
			ind[i] = int32(t.Var) + 1
			val[i] = t.Coef
		}
		lp.SetMatRow(row, ind, val)
	}

	msgLev := glpk.MsgLev(glpk.MSG_ERR)
	if opts.Verbose {
		msgLev = glpk.MsgLev(glpk.MSG_ON)
	}
	smcp := glpk.NewSmcp()
	smcp.SetMsgLev(msgLev)
	if err := lp.Simplex(smcp); err != nil {
		return mip.Solution{Status: mip.StatusNoSolution}, fmt.Errorf("glpk simplex: %w", err)
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(msgLev)
	if err := lp.Intopt(iocp); err != nil {
		// GLPK reports proven primal infeasibility as an Intopt error.
		s.log.Warnf("glpk intopt: %v", err)
		return mip.Solution{Status: mip.StatusInfeasible}, nil
	}

	var status mip.Status
	switch lp.MipStatus() {
	case glpk.OPT:
		status = mip.StatusOptimal
	case glpk.FEAS:
		status = mip.StatusFeasible
	case glpk.NOFEAS:
		status = mip.StatusInfeasible
	default:
		status = mip.StatusNoSolution
	}
	if !status.Solved() {
		return mip.Solution{Status: status}, nil
	}

	values := make([]float64, m.NumVars())
	for i := range values {
		values[i] = lp.MipColVal(i + 1)
	}
	return mip.Solution{Status: status, Objective: lp.MipObjVal(), Values: values}, nil
}

func boundsType(lo, hi float64) glpk.BndsType {
	switch {
	case lo == hi:
		return glpk.BndsType(glpk.FX)
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return glpk.BndsType(glpk.FR)
	case math.IsInf(hi, 1):
		return glpk.BndsType(glpk.LO)
	case math.IsInf(lo, -1):
		return glpk.BndsType(glpk.UP)
	default:
		return glpk.BndsType(glpk.DB)
	}
}
