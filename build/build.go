package build

var (
	Name    = "fix-style"
	Version = "v0.0.0+dev"
)
