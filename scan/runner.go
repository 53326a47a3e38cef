package scan

import (
	"os"
	"runtime"

	ex "github.com/Lafeng/weakdh/exception"
	log "github.com/Lafeng/weakdh/glog"
	"github.com/Lafeng/weakdh/kex"
)

// Runner scans directories in file name order, so reports are
// reproducible. With more than one worker the transcripts of a directory
// are analyzed concurrently but still printed in name order.
type Runner struct {
	session *Session
	printer *Printer
	workers int
	files   int
	failed  int
	records int
}

func NewRunner(session *Session, printer *Printer) *Runner {
	return &Runner{session: session, printer: printer, workers: 1}
}

// SetWorkers bounds the transcripts analyzed at once; n <= 0 means one
// per CPU.
func (r *Runner) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	r.workers = n
}

// ScanDirs checks every directory before scanning any of them, then prints
// the disclaimer once.
func (r *Runner) ScanDirs(dirs ...string) error {
	for _, d := range dirs {
		if !IsDir(d) {
			return NOT_A_DIRECTORY.Apply(d)
		}
	}
	for _, d := range dirs {
		if err := r.ScanDir(d); err != nil {
			return err
		}
	}
	r.printer.Disclaimer()
	if log.V(1) {
		log.Infof("Scanned %d files (%d unreadable), %d negotiated groups", r.files, r.failed, r.records)
	}
	return nil
}

func (r *Runner) ScanDir(dir string) error {
	files, err := ListTranscripts(dir)
	if err != nil {
		return err
	}
	if r.workers > 1 && len(files) > 1 {
		r.scanConcurrently(files)
		return nil
	}
	for _, f := range files {
		r.ScanFile(f)
	}
	return nil
}

// ScanFile reports an unreadable file and carries on. A file that fails
// halfway is reported by its error alone.
func (r *Runner) ScanFile(path string) {
	r.begin(path)
	t := &transcript{path: path}
	t.records, t.err = r.analyze(path, t)
	r.finish(t)
}

// transcript holds the findings of one file until it is read completely.
type transcript struct {
	path     string
	findings []kex.Finding
	records  int
	err      error
	done     chan struct{}
}

func (t *transcript) Report(f kex.Finding) {
	t.findings = append(t.findings, f)
}

func (r *Runner) scanConcurrently(files []string) {
	pending := make([]*transcript, len(files))
	for i, f := range files {
		pending[i] = &transcript{path: f, done: make(chan struct{})}
	}
	// a token is taken before a worker starts, so files start in order
	tokens := make(chan byte, r.workers)
	go func() {
		for _, t := range pending {
			tokens <- 1
			go func(t *transcript) {
				defer func() {
					close(t.done)
					<-tokens
				}()
				t.records, t.err = r.analyze(t.path, t)
			}(t)
		}
	}()
	for _, t := range pending {
		r.begin(t.path)
		<-t.done
		r.finish(t)
	}
}

func (r *Runner) begin(path string) {
	r.files++
	if log.V(log.LV_FILE) {
		log.Infoln("Analyzing", path)
	}
}

// finish prints the findings of t, or only its error when reading failed.
func (r *Runner) finish(t *transcript) {
	if t.err != nil {
		r.failed++
		log.Warningln("Skip", t.path, t.err, ex.Detail(t.err))
		r.printer.FileError(t.path, t.err)
		return
	}
	r.records += t.records
	for _, f := range t.findings {
		r.printer.Report(f)
	}
}

func (r *Runner) analyze(path string, sink kex.Sink) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.session.Analyze(f, sink)
}

// Stats returns files scanned, files that failed, and negotiated groups.
func (r *Runner) Stats() (files, failed, records int) {
	return r.files, r.failed, r.records
}
