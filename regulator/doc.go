// Package regulator implements the market regulator: a journal of reported
// violations, penalty points per actor, automatic fines above a threshold
// and a points-based dispute heuristic.
package regulator
