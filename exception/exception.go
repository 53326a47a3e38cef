package exception

import (
	"fmt"
	"runtime"

	log "github.com/Lafeng/weakdh/glog"
)

// injectable
var DEBUG bool

type Exception struct {
	msg  string
	kind *Exception // sentinel this one was derived from
}

func (e *Exception) Error() string {
	return e.msg
}

// Is reports whether target is e or the sentinel e was applied from.
func (e *Exception) Is(target error) bool {
	t, y := target.(*Exception)
	if !y {
		return false
	}
	return t == e || t == e.kind
}

func (e *Exception) Apply(appendage interface{}) *Exception {
	newE := new(Exception)
	newE.msg = fmt.Sprintf("%s %v", e.msg, appendage)
	newE.kind = e.root()
	return newE
}

func (e *Exception) root() *Exception {
	if e.kind != nil {
		return e.kind
	}
	return e
}

func New(msg string) *Exception {
	return &Exception{msg: msg}
}

func Detail(err error) string {
	if err != nil && (bool(log.V(1)) || DEBUG) {
		return fmt.Sprintf("(Error:%T::%s)", err, err)
	}
	return ""
}

// if ( [re] != nil OR [err] !=nil ) then return true
// and set [err] to [re] if [re] != nil
func Catch(re interface{}, err *error) bool {
	var ex error
	if re != nil {
		switch rex := re.(type) {
		case error:
			ex = rex
		default:
			ex = fmt.Errorf("%v", re)
		}
		// print recovered error
		if DEBUG || bool(log.V(log.LV_ERR_STACK)) {
			buf := make([]byte, 1600)
			n := runtime.Stack(buf, false)
			log.Errorln(ex.Error() + "\n" + string(buf[:n]))
		}
	}
	if ex != nil {
		if err != nil {
			*err = ex
		}
		return true
	}
	return err != nil && *err != nil
}

// Spawn replaces a non-nil *ePtr with an Exception carrying the formatted
// context; the wrapped message is appended when verbose.
func Spawn(ePtr *error, format string, args ...interface{}) error {
	var err error
	if err = *ePtr; err == nil {
		return nil
	}
	var e Exception
	e.msg = fmt.Sprintf(format, args...)
	if bool(log.V(1)) || DEBUG {
		e.msg += " " + err.Error()
	}
	if x, y := err.(*Exception); y {
		e.kind = x.root()
	}
	*ePtr = &e
	return &e
}
