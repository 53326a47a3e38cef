package kex

import (
	"github.com/Lafeng/weakdh/crypto"
	"github.com/Lafeng/weakdh/exception"
	log "github.com/Lafeng/weakdh/glog"
)

var (
	INCOMPLETE_GROUP_EXCHANGE = exception.New("Client group sizes without server group size at line")
	UNSOLICITED_GROUP_SIZE    = exception.New("Server group size without client group sizes at line")
	GENERATOR_WITHOUT_PRIME   = exception.New("Generator without pending prime at line")
)

// ParamValidator checks explicit group parameters.
type ParamValidator interface {
	CheckGroup(primeHex string) (crypto.GroupVerdict, error)
	CheckGenerator(generatorHex, primeHex string) (crypto.GeneratorVerdict, error)
}

// primeState is either NoPendingPrime (set == false) or PendingPrime(hex).
type primeState struct {
	hex string
	set bool
}

// heldClient is a client proposal line waiting for the next line.
type heldClient struct {
	ev   Event
	line int
}

// Assembler correlates the events of one transcript. Explicit prime and
// generator lines pair up one to one; a client proposal line must be
// followed directly by the server's choice. Algorithm lines set the name
// used by later records.
//
// An Assembler is not safe for concurrent use; create one per transcript.
type Assembler struct {
	fixedGroup string
	classifier *crypto.Classifier
	validator  ParamValidator
	sink       Sink

	line      int
	algorithm string
	prime     primeState
	client    *heldClient
	records   int
}

func NewAssembler(fixedGroupAlgorithm string, classifier *crypto.Classifier, validator ParamValidator, sink Sink) *Assembler {
	if fixedGroupAlgorithm == "" {
		fixedGroupAlgorithm = DefaultMarkers.FixedGroupAlgorithm
	}
	return &Assembler{
		fixedGroup: fixedGroupAlgorithm,
		classifier: classifier,
		validator:  validator,
		sink:       sink,
	}
}

// Feed consumes the event of the next line.
func (a *Assembler) Feed(ev Event) {
	a.line++
	if log.V(log.LV_EVENT) && ev.Kind != Unrecognized {
		log.Infof("line %d: %s", a.line, ev)
	}

	// the line after a client proposal either completes it or breaks it
	if held := a.client; held != nil {
		a.client = nil
		if ev.Kind == ServerGroupBits {
			a.completeExchange(held, ev)
			return
		}
		a.diagnose(held.line, MSG_GROUP_EXCHANGE, INCOMPLETE_GROUP_EXCHANGE.Apply(held.line))
	}

	switch ev.Kind {
	case PrimeHex:
		a.onPrime(ev)
	case GeneratorHex:
		a.onGenerator(ev)
	case AlgorithmChosen:
		a.algorithm = ev.Name
		if ev.Name == a.fixedGroup {
			a.classify(KeyExchangeRecord{
				Algorithm:  ev.Name,
				Client:     GroupRange{FIXED_GROUP_BITS, FIXED_GROUP_BITS, FIXED_GROUP_BITS},
				ServerBits: FIXED_GROUP_BITS,
			})
		}
	case ClientGroupRange:
		a.client = &heldClient{ev: ev, line: a.line}
	case ServerGroupBits:
		a.diagnose(a.line, MSG_GROUP_EXCHANGE, UNSOLICITED_GROUP_SIZE.Apply(a.line))
	}
}

// Close ends the transcript. A client proposal on the last line is reported
// as incomplete; an unpaired prime is dropped since it was already checked.
func (a *Assembler) Close() {
	if held := a.client; held != nil {
		a.client = nil
		a.diagnose(held.line, MSG_GROUP_EXCHANGE, INCOMPLETE_GROUP_EXCHANGE.Apply(held.line))
	}
	a.prime = primeState{}
}

// Records is the number of negotiated groups reported so far.
func (a *Assembler) Records() int {
	return a.records
}

func (a *Assembler) completeExchange(held *heldClient, server Event) {
	if held.ev.Err != nil || server.Err != nil {
		cause := held.ev.Err
		if cause == nil {
			cause = server.Err
		}
		a.diagnose(a.line, MSG_GROUP_EXCHANGE, cause)
		return
	}
	a.classify(KeyExchangeRecord{
		Algorithm:  a.algorithm,
		Client:     held.ev.Range,
		ServerBits: server.Bits,
	})
}

func (a *Assembler) classify(rec KeyExchangeRecord) {
	a.records++
	a.emit(Finding{
		Kind:   NegotiatedGroup,
		Line:   a.line,
		Record: rec,
		Level:  a.classifier.Classify(rec.ServerBits),
	})
}

func (a *Assembler) onPrime(ev Event) {
	if a.prime.set && bool(log.V(log.LV_EVENT)) {
		log.Infof("line %d: unpaired prime superseded", a.line)
	}
	verdict, err := a.validator.CheckGroup(ev.Hex)
	if err != nil {
		a.prime = primeState{}
		a.diagnose(a.line, MSG_PRIME, err)
		return
	}
	a.prime = primeState{hex: ev.Hex, set: true}
	a.emit(Finding{
		Kind:   PrimeCheck,
		Line:   a.line,
		Params: GroupParameters{PrimeHex: ev.Hex},
		Group:  verdict,
	})
}

func (a *Assembler) onGenerator(ev Event) {
	if !a.prime.set {
		a.diagnose(a.line, MSG_GENERATOR_WITHOUT_PRIME, GENERATOR_WITHOUT_PRIME.Apply(a.line))
		return
	}
	primeHex := a.prime.hex
	a.prime = primeState{}
	verdict, err := a.validator.CheckGenerator(ev.Hex, primeHex)
	if err != nil {
		a.diagnose(a.line, MSG_GENERATOR, err)
		return
	}
	if verdict.Broken {
		a.emit(Finding{
			Kind:      GeneratorCheck,
			Line:      a.line,
			Params:    GroupParameters{PrimeHex: primeHex, GeneratorHex: ev.Hex, HasGenerator: true},
			Generator: verdict,
		})
	}
}

func (a *Assembler) diagnose(line int, msg string, cause error) {
	if log.V(log.LV_ERR_DETAIL) {
		log.Warningf("line %d: %s %v", line, msg, cause)
	}
	a.emit(Finding{Kind: Diagnostic, Line: line, Message: msg, Err: cause})
}

func (a *Assembler) emit(f Finding) {
	if log.V(log.LV_FINDING) {
		log.Infof("finding at line %d: %s", f.Line, f)
	}
	if a.sink != nil {
		a.sink.Report(f)
	}
}
