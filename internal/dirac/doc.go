// Package dirac solves the radial Dirac equation of a hydrogenic two-body
// system with a shooting method.
//
// For a quantum state (n, κ) the solver starts from the Sommerfeld energy,
// integrates the coupled (G, F) system outward from r_min and inward from
// r_max, and adjusts the trial energy until the logarithmic derivatives of G
// agree at the matching radius. The converged pieces are stitched into one
// wavefunction normalized to ∫(G² + F²) dr = 1.
//
// All quantities are SI: radii in metres, energies in joules, except where a
// name ends in EV.
package dirac
