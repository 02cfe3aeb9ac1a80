// Package cli implements the nibblemouse-sim commands.
//
// Every command runs the real bridge against a simulated legacy port whose
// strobe is clocked by a ticker. A monitor samples the port after each edge
// the way the legacy host does and prints the frames it decodes.
package cli
