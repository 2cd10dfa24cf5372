package version

// Version is stamped at build time:
// go build -ldflags "-X github.com/EliasObeid9-02/library-system/pkg/version.Version=1.0.0".
var Version = "dev"
