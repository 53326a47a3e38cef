// Package glog routes the project's logging through github.com/golang/glog
// and keeps glog's flag-based knobs behind two setters.
package glog

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
)

type Verbose = glog.Verbose

var (
	Infoln    = glog.Infoln
	Infof     = glog.Infof
	Warningln = glog.Warningln
	Warningf  = glog.Warningf
	Errorln   = glog.Errorln
	Flush     = glog.Flush
)

func V(level int) Verbose {
	return glog.V(glog.Level(level))
}

// SetLogOutput sends logs to stderr when dir is empty, otherwise to glog
// files under dir.
func SetLogOutput(dir string) {
	if dir == "" {
		flag.Set("logtostderr", "true")
	} else {
		flag.Set("logtostderr", "false")
		flag.Set("log_dir", dir)
	}
}

func SetLogVerbose(level int) {
	if level < 0 {
		level = 0
	}
	flag.Set("v", strconv.Itoa(level))
}
