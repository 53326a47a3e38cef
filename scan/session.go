package scan

import (
	"bufio"
	"errors"
	"io"

	"github.com/Lafeng/weakdh/crypto"
	"github.com/Lafeng/weakdh/exception"
	log "github.com/Lafeng/weakdh/glog"
	"github.com/Lafeng/weakdh/kex"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var INVALID_ENCODING = exception.New("Invalid text encoding:")

// MAX_LINE bounds one transcript line; an 8192-bit prime is 2048 digits.
const MAX_LINE = 1 << 20

// Session analyzes single transcripts. The scanner, classifier and
// validator are shared; each call to Analyze gets its own assembler.
type Session struct {
	scanner    *kex.Scanner
	classifier *crypto.Classifier
	validator  kex.ParamValidator
}

func NewSession(scanner *kex.Scanner, classifier *crypto.Classifier, validator kex.ParamValidator) *Session {
	return &Session{
		scanner:    scanner,
		classifier: classifier,
		validator:  validator,
	}
}

// Analyze reads r as UTF-8 text, an optional byte order mark is dropped,
// and reports findings to sink in line order. It returns the number of
// negotiated groups found. Findings already reported stay reported when
// reading fails halfway; Runner buffers them and drops them in that case.
func (s *Session) Analyze(r io.Reader, sink kex.Sink) (records int, err error) {
	defer func() {
		exception.Catch(recover(), &err)
	}()
	asm := kex.NewAssembler(s.scanner.Markers().FixedGroupAlgorithm, s.classifier, s.validator, sink)
	text := transform.NewReader(r, transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()))

	lines := bufio.NewScanner(text)
	lines.Buffer(make([]byte, 64*1024), MAX_LINE)
	for lines.Scan() {
		line := lines.Text()
		if log.V(log.LV_LINE) {
			log.Infoln(line)
		}
		asm.Feed(s.scanner.Classify(line))
	}
	if err = lines.Err(); err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			err = INVALID_ENCODING.Apply(err)
		}
		return asm.Records(), err
	}
	asm.Close()
	return asm.Records(), nil
}
