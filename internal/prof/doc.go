// Package prof writes pprof profiles of a simulator run.
//
// Profiling is compiled in only with the "profile" build tag:
//
//	go build -tags profile ./cmd/nibblemouse-sim
//	nibblemouse-sim run --prof.cpu=cpu.prof --prof.heap=heap.prof --script s.yaml
//
// With the tag, net/http/pprof handlers are also served on localhost:6060.
// Without it, [Config.Start] logs that profiling is unavailable and returns a
// no-op stop function.
package prof
