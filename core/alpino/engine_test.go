package alpino

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// engineMode selects how the fake engine treats sentence ids.
type engineMode int

const (
	// understands "id|text" and echoes the id
	modePrefix engineMode = iota
	// treats the whole line as text and numbers sentences itself
	modeOwnIDs
	// treats the whole line as text and writes no sentence id
	modeNoIDs
	// understands "id|text" but always reports id 7
	modeWrongID
	// answers without a parse tree
	modeGarbage
)

// fakeEngine is a minimal stand-in for an Alpino server.
type fakeEngine struct {
	mode     engineMode
	listener net.Listener

	mu       sync.Mutex
	requests []string
	counter  int
}

func startEngine(t *testing.T, mode engineMode) *fakeEngine {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	e := &fakeEngine{mode: mode, listener: l}
	t.Cleanup(func() { l.Close() })
	go e.serve()
	return e
}

func (e *fakeEngine) addr() string {
	return e.listener.Addr().String()
}

func (e *fakeEngine) received() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.requests...)
}

func (e *fakeEngine) serve() {
	for {
		conn, err := e.listener.Accept()
		if err != nil {
			return
		}
		go e.handle(conn)
	}
}

func (e *fakeEngine) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if line == "" || err != nil {
			break
		}
		lines = append(lines, line)
	}
	request := strings.Join(lines, "\n")

	e.mu.Lock()
	e.requests = append(e.requests, request)
	e.counter++
	n, mode := e.counter, e.mode
	e.mu.Unlock()

	fmt.Fprint(conn, respond(mode, request, n))
}

func (e *fakeEngine) setMode(mode engineMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
}

func respond(mode engineMode, request string, n int) string {
	id, text := "", request
	switch mode {
	case modePrefix, modeWrongID:
		if i := strings.Index(request, "|"); i >= 0 {
			id, text = request[:i], request[i+1:]
		}
		if mode == modeWrongID {
			id = "7"
		}
	case modeOwnIDs:
		id = fmt.Sprintf("%d", n)
	case modeGarbage:
		return "error: parser crashed\n"
	}
	return tree(id, text)
}

// tree renders a flat parse tree for text.
func tree(id, text string) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<alpino_ds version=\"1.3\">\n")
	b.WriteString("  <node begin=\"0\" cat=\"top\" id=\"0\">\n")
	for i, w := range strings.Fields(text) {
		fmt.Fprintf(&b, "    <node begin=\"%d\" end=\"%d\" id=\"%d\" word=\"%s\"/>\n", i, i+1, i+1, w)
	}
	b.WriteString("  </node>\n")
	if id != "" {
		fmt.Fprintf(&b, "  <sentence sentid=\"%s\">%s</sentence>\n", id, text)
	} else {
		fmt.Fprintf(&b, "  <sentence>%s</sentence>\n", text)
	}
	b.WriteString("</alpino_ds>\n")
	return b.String()
}
