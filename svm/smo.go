package svm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// tau replaces a non-positive curvature in the pair update.
const tau = 1e-12

// problem is one binary C-SVC dual:
//
//	min ½αᵀQα − eᵀα  s.t. 0 ≤ α ≤ C, yᵀα = 0,  Q_ij = y_i y_j K_ij
//
// over the samples idx of a shared Gram matrix.
type problem struct {
	gram *mat.SymDense
	idx  []int
	y    []float64
	c    float64
}

type solution struct {
	alpha      []float64
	rho        float64
	iterations int
	converged  bool
}

func (p *problem) q(a, b int) float64 {
	return p.y[a] * p.y[b] * p.gram.At(p.idx[a], p.idx[b])
}

// solve runs SMO until the maximal KKT violation drops below tol.
func (p *problem) solve(tol float64, maxIter int) solution {
	n := len(p.idx)
	alpha := make([]float64, n)
	grad := make([]float64, n)
	for t := range grad {
		grad[t] = -1
	}

	iter := 0
	converged := false
	for ; iter < maxIter; iter++ {
		i, j, gap := p.selectPair(alpha, grad)
		if gap < tol || i < 0 || j < 0 {
			converged = true
			break
		}

		oldI, oldJ := alpha[i], alpha[j]
		p.updatePair(alpha, grad, i, j)

		dI, dJ := alpha[i]-oldI, alpha[j]-oldJ
		if dI == 0 && dJ == 0 {
			continue
		}
		for t := 0; t < n; t++ {
			grad[t] += p.q(t, i)*dI + p.q(t, j)*dJ
		}
	}

	return solution{
		alpha:      alpha,
		rho:        p.rho(alpha, grad),
		iterations: iter,
		converged:  converged,
	}
}

func (p *problem) upFree(t int, alpha []float64) bool {
	if p.y[t] > 0 {
		return alpha[t] < p.c
	}
	return alpha[t] > 0
}

func (p *problem) lowFree(t int, alpha []float64) bool {
	if p.y[t] > 0 {
		return alpha[t] > 0
	}
	return alpha[t] < p.c
}

// selectPair picks the working set with second-order information (Fan, Chen
// and Lin 2005, as in libsvm): i maximizes −y G over I_up, j is the I_low
// index whose pair with i promises the largest decrease of the objective.
// The returned gap is the maximal KKT violation; j is -1 when no index of
// I_low violates together with i.
func (p *problem) selectPair(alpha, grad []float64) (int, int, float64) {
	gMax := math.Inf(-1)
	i := -1
	for t := range alpha {
		if v := -p.y[t] * grad[t]; p.upFree(t, alpha) && v >= gMax {
			gMax, i = v, t
		}
	}
	if i < 0 {
		return -1, -1, 0
	}

	gMax2 := math.Inf(-1)
	j := -1
	best := math.Inf(1)
	qii := p.q(i, i)
	for t := range alpha {
		if !p.lowFree(t, alpha) {
			continue
		}
		yg := p.y[t] * grad[t]
		if yg >= gMax2 {
			gMax2 = yg
		}
		diff := gMax + yg
		if diff <= 0 {
			continue
		}
		quad := qii + p.q(t, t) - 2*p.y[t]*p.y[i]*p.q(i, t)
		if quad <= 0 {
			quad = tau
		}
		if obj := -diff * diff / quad; obj <= best {
			best, j = obj, t
		}
	}
	return i, j, gMax + gMax2
}

// updatePair solves the two-variable subproblem analytically and clips to the box.
func (p *problem) updatePair(alpha, grad []float64, i, j int) {
	c := p.c
	qii, qjj, qij := p.q(i, i), p.q(j, j), p.q(i, j)

	if p.y[i] != p.y[j] {
		quad := qii + qjj + 2*qij
		if quad <= 0 {
			quad = tau
		}
		delta := (-grad[i] - grad[j]) / quad
		diff := alpha[i] - alpha[j]
		alpha[i] += delta
		alpha[j] += delta
		if diff > 0 {
			if alpha[j] < 0 {
				alpha[j] = 0
				alpha[i] = diff
			}
		} else if alpha[i] < 0 {
			alpha[i] = 0
			alpha[j] = -diff
		}
		if diff > 0 {
			if alpha[i] > c {
				alpha[i] = c
				alpha[j] = c - diff
			}
		} else if alpha[j] > c {
			alpha[j] = c
			alpha[i] = c + diff
		}
		return
	}

	quad := qii + qjj - 2*qij
	if quad <= 0 {
		quad = tau
	}
	delta := (grad[i] - grad[j]) / quad
	sum := alpha[i] + alpha[j]
	alpha[i] -= delta
	alpha[j] += delta
	if sum > c {
		if alpha[i] > c {
			alpha[i] = c
			alpha[j] = sum - c
		}
	} else if alpha[j] < 0 {
		alpha[j] = 0
		alpha[i] = sum
	}
	if sum > c {
		if alpha[j] > c {
			alpha[j] = c
			alpha[i] = sum - c
		}
	} else if alpha[i] < 0 {
		alpha[i] = 0
		alpha[j] = sum
	}
}

// rho averages y·G over free variables, or takes the midpoint of the
// feasible interval when every variable sits on a bound.
func (p *problem) rho(alpha, grad []float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	var sumFree float64
	nFree := 0
	for t := range alpha {
		yg := p.y[t] * grad[t]
		switch {
		case alpha[t] >= p.c:
			if p.y[t] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case alpha[t] <= 0:
			if p.y[t] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}
	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
