package core

// firewall.go — the Firewall Scanner, spec §4.5: a long-lived actor that
// matches transaction payloads against a fixed set of binary signatures
// loaded at start, replying (data, pass) to a caller-supplied reply
// channel. Grounded on the teacher's Firewall in firewall.go (a
// sync.RWMutex-guarded rule set consulted by CheckTx) generalized from
// static address/token block-lists into a signature-scanning mailbox actor,
// since spec §4.5 explicitly calls the scanner "a long-lived actor" with
// reply-address-bearing requests rather than a synchronous method call.

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ItemKind distinguishes the two message kinds the scanner accepts (spec §4.5).
type ItemKind int

const (
	KindTx ItemKind = iota
	KindBlock
)

// FirewallSignature is one binary pattern the scanner matches against.
type FirewallSignature struct {
	Name    string `yaml:"name"`
	Pattern []byte `yaml:"pattern"`
}

// signatureFile is the on-disk YAML shape loaded at construction.
type signatureFile struct {
	Signatures []FirewallSignature `yaml:"signatures"`
}

// ScanRequest is a single mailbox message, including its own reply channel
// per spec §4.5 ("requests include a reply address").
type ScanRequest struct {
	RequestID uuid.UUID
	Kind      ItemKind
	Data      []byte
	ReplyTo   chan ScanReply
}

// ScanReply carries back the scanned data and the pass/fail verdict.
type ScanReply struct {
	RequestID uuid.UUID
	Data      []byte
	Pass      bool
}

// SignatureEngine is the external signature-matching collaborator (spec §6:
// signature_engine.all/is_infected). FirewallScanner delegates to it rather
// than hard-coding a match algorithm.
type SignatureEngine interface {
	All() []FirewallSignature
	IsInfected(data []byte, signatures []FirewallSignature) (bool, *FirewallSignature)
}

// substringEngine is the default SignatureEngine: a transaction's data is
// infected if any loaded pattern appears anywhere within it.
type substringEngine struct {
	signatures []FirewallSignature
}

func (e *substringEngine) All() []FirewallSignature { return e.signatures }

func (e *substringEngine) IsInfected(data []byte, signatures []FirewallSignature) (bool, *FirewallSignature) {
	for i := range signatures {
		if len(signatures[i].Pattern) == 0 {
			continue
		}
		if bytes.Contains(data, signatures[i].Pattern) {
			return true, &signatures[i]
		}
	}
	return false, nil
}

// FirewallScanner is the actor described in spec §4.5: it owns its
// signature table (read-only after init, per spec §5) and answers scan
// requests delivered over its mailbox.
type FirewallScanner struct {
	mailbox chan ScanRequest
	engine  SignatureEngine
	logger  *logrus.Logger
}

// LoadSignaturesYAML reads a signature list from a YAML file shaped as:
//
//	signatures:
//	  - name: example
//	    pattern: !!binary <base64>
func LoadSignaturesYAML(path string) ([]FirewallSignature, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("firewall: read signature file: %w", err)
	}
	var sf signatureFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("firewall: parse signature file: %w", err)
	}
	return sf.Signatures, nil
}

// NewFirewallScanner starts a scanner actor with the given signature set and
// a mailbox buffered to 256 requests. The scanner's goroutine runs until ctx
// is cancelled.
func NewFirewallScanner(ctx context.Context, signatures []FirewallSignature, logger *logrus.Logger) *FirewallScanner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fw := &FirewallScanner{
		mailbox: make(chan ScanRequest, 256),
		engine:  &substringEngine{signatures: signatures},
		logger:  logger,
	}
	go fw.run(ctx)
	return fw
}

func (fw *FirewallScanner) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-fw.mailbox:
			fw.handle(req)
		}
	}
}

func (fw *FirewallScanner) handle(req ScanRequest) {
	reply := ScanReply{RequestID: req.RequestID, Data: req.Data}
	switch req.Kind {
	case KindBlock:
		// Blocks always pass (spec §4.5); block validation beyond
		// deduplication is out of scope (spec §1).
		reply.Pass = true
	case KindTx:
		infected, match := fw.engine.IsInfected(req.Data, fw.engine.All())
		reply.Pass = !infected
		if infected {
			fw.logger.WithField("signature", match.Name).Debug("firewall: rejected transaction data")
		}
	default:
		// Any other type fails closed (spec §4.5).
		reply.Pass = false
	}
	if req.ReplyTo != nil {
		req.ReplyTo <- reply
	}
}

// Scan is a synchronous convenience wrapper around the actor's mailbox
// protocol: it sends a request, blocks for the reply, and returns the
// pass/fail verdict. Callers that want true actor semantics (non-blocking
// send with an explicit reply handler) can construct a ScanRequest directly.
func (fw *FirewallScanner) Scan(ctx context.Context, kind ItemKind, data []byte) (bool, error) {
	reply := make(chan ScanReply, 1)
	req := ScanRequest{RequestID: uuid.New(), Kind: kind, Data: data, ReplyTo: reply}
	select {
	case fw.mailbox <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.Pass, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Rules returns the scanner's loaded signature names, for the local HTTP
// interface's /firewall/rules endpoint (SPEC_FULL §4.7.1).
func (fw *FirewallScanner) Rules() []string {
	sigs := fw.engine.All()
	names := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
	}
	return names
}
