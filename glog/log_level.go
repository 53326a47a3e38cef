package glog

const (
	// generic error message
	LV_ERR_DETAIL = 1
	// error stack or DEBUG
	LV_ERR_STACK = 2

	LV_FILE     = 1 // scan
	LV_REGISTRY = 1 // groups
	LV_CONFIG   = 1 // main
	LV_FINDING  = 2 // kex
	LV_SKIP     = 2 // scan

	LV_EVENT       = 3 // kex
	LV_PRIME_CACHE = 4 // crypto
	LV_LINE        = 5 // scan
)
