package benchmark

import _ "embed"

// defaultData is the compiled-in reference dataset. Operators can swap it
// out wholesale with the benchmark_file config setting.
//
//go:embed benchmarks.yaml
var defaultData []byte
