package sch

import "math"

const negInf = -1e18

func bitToPM(b byte) float64 {
	if b == 0 {
		return 1
	}
	return -1
}

// maxLogDecode runs one max-log-MAP pass of a single RSC constituent
// decoder: sysLLR and parLLR are the channel LLRs for the systematic and
// parity streams (length K+tailLen), apriori is the extrinsic
// information fed in from the other constituent decoder (length K,
// zero-padded over the tail). It returns the a-posteriori LLR for every
// information bit (length K) and the extrinsic LLR to hand to the other
// decoder.
func maxLogDecode(sysLLR, parLLR, apriori []float64) (aposteriori, extrinsic []float64) {
	n := len(sysLLR)
	k := len(apriori)

	alpha := make([][numStates]float64, n+1)
	beta := make([][numStates]float64, n+1)
	for s := 1; s < numStates; s++ {
		alpha[0][s] = negInf
	}
	for s := 1; s < numStates; s++ {
		beta[n][s] = negInf
	}

	aprioriAt := func(t int) float64 {
		if t < k {
			return apriori[t]
		}
		return 0
	}

	gamma := func(t, prev int, input byte) float64 {
		tr := trellisTable[prev][input]
		sysPM := bitToPM(input)
		parPM := bitToPM(tr.parity)
		return 0.5*(sysLLR[t]*sysPM+parLLR[t]*parPM) + 0.5*aprioriAt(t)*sysPM
	}

	// Forward recursion: alpha[t+1][ns] = max over incoming edges.
	for t := 0; t < n; t++ {
		next := [numStates]float64{}
		for s := range next {
			next[s] = negInf
		}
		for s := 0; s < numStates; s++ {
			if alpha[t][s] <= negInf {
				continue
			}
			for in := 0; in < 2; in++ {
				tr := trellisTable[s][in]
				v := alpha[t][s] + gamma(t, s, byte(in))
				if v > next[tr.next] {
					next[tr.next] = v
				}
			}
		}
		alpha[t+1] = next
	}

	// Backward recursion: beta[t][s] = max over outgoing edges.
	for t := n - 1; t >= 0; t-- {
		cur := [numStates]float64{}
		for s := range cur {
			cur[s] = negInf
		}
		for s := 0; s < numStates; s++ {
			for in := 0; in < 2; in++ {
				tr := trellisTable[s][in]
				if beta[t+1][tr.next] <= negInf {
					continue
				}
				v := beta[t+1][tr.next] + gamma(t, s, byte(in))
				if v > cur[s] {
					cur[s] = v
				}
			}
		}
		beta[t] = cur
	}

	aposteriori = make([]float64, k)
	extrinsic = make([]float64, k)
	for t := 0; t < k; t++ {
		best0, best1 := negInf, negInf
		for s := 0; s < numStates; s++ {
			if alpha[t][s] <= negInf {
				continue
			}
			for in := 0; in < 2; in++ {
				tr := trellisTable[s][in]
				if beta[t+1][tr.next] <= negInf {
					continue
				}
				v := alpha[t][s] + gamma(t, s, byte(in)) + beta[t+1][tr.next]
				if in == 0 {
					if v > best0 {
						best0 = v
					}
				} else {
					if v > best1 {
						best1 = v
					}
				}
			}
		}
		post := best0 - best1
		if math.IsInf(post, 0) || math.IsNaN(post) {
			post = 0
		}
		aposteriori[t] = post
		extrinsic[t] = post - sysLLR[t] - aprioriAt(t)
	}
	return aposteriori, extrinsic
}
