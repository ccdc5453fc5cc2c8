package doodle

// CompilerOptions controls optional compiler behavior: a small plain
// struct passed by value, no builder ceremony or functional options.
// Empty today; kept as the extension point future compiler passes
// (e.g. match-tree flattening) will hang options off of, matching the
// teacher's own Config struct having more fields than any one compiler
// pass currently reads.
type CompilerOptions struct{}

// DefaultCompilerOptions returns the options used by Compile.
func DefaultCompilerOptions() CompilerOptions {
	return CompilerOptions{}
}
