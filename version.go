package main

import (
	"fmt"
	"runtime"
)

const (
	app_name           = "weakdh"
	project_url        = "https://github.com/Lafeng/weakdh"
	ver_major   uint8  = 2
	ver_minor   uint8  = 1
	ver_build   uint16 = 3012
)

var build_flag string // -ldflags "-X main.build_flag=-beta"

func versionString() string {
	return fmt.Sprintf("%s version: v%d.%d.%04d%s", app_name, ver_major, ver_minor, ver_build, build_flag)
}

func buildString() string {
	return fmt.Sprintf("%s project: <%s>\nBuilt with %s %s for %s/%s",
		app_name, project_url, runtime.Compiler, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
