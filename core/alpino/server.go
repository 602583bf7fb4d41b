package alpino

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// Calibration sentence and id.
const (
	calibrationText = "hallo wereld !"
	calibrationID   = "42"
)

var (
	closingPunctuation = regexp.MustCompile(`([^\s])([.?!])$`)
	sentenceIDPattern  = regexp.MustCompile(`sentid="([^"]+)"`)
)

// ServerConfig configures a ServerClient.
type ServerConfig struct {
	// Address is the host:port of the Alpino server.
	Address string

	// Timeout bounds each request, including the dial. Zero means no limit.
	Timeout time.Duration

	// AlpinoHome is the installation directory used to find the version
	// file. Defaults to $ALPINO_HOME.
	AlpinoHome string
}

// Calibration records how the server handles sentence ids.
type Calibration struct {
	// PrefixMode sends ids as "id|text"; the server echoes them as sentid.
	PrefixMode bool

	// WriteIDMode injects a sentid attribute because the server writes none.
	WriteIDMode bool
}

// ServerClient parses sentences with an Alpino server.
type ServerClient struct {
	address     string
	timeout     time.Duration
	calibration Calibration
	info        Info
}

// NewServerClient connects to the server and calibrates its id handling.
// A calibration failure is a configuration error.
func NewServerClient(ctx context.Context, cfg ServerConfig) (*ServerClient, error) {
	if cfg.Address == "" {
		return nil, errors.NewConfig("alpino", "server address is required", nil)
	}
	c := &ServerClient{
		address: cfg.Address,
		timeout: cfg.Timeout,
	}

	cal, err := c.calibrate(ctx)
	if err != nil {
		return nil, errors.NewConfig("alpino", "calibration failed", err)
	}
	c.calibration = cal

	home := cfg.AlpinoHome
	if home == "" {
		home = os.Getenv("ALPINO_HOME")
	}
	c.info = ReadInfo(home)

	logging.DebugContext(ctx, "alpino server calibrated",
		"address", c.address,
		"prefix_mode", cal.PrefixMode,
		"write_id_mode", cal.WriteIDMode)
	return c, nil
}

func (c *ServerClient) calibrate(ctx context.Context) (Calibration, error) {
	cal := Calibration{PrefixMode: true}
	parsed, err := c.parse(ctx, calibrationText, calibrationID, cal)
	if err != nil {
		return cal, err
	}

	if strings.Contains(parsed, `"`+calibrationID+`|hallo"`) {
		// the prefix was parsed as part of the sentence
		cal.PrefixMode = false
		parsed, err = c.parse(ctx, calibrationText, calibrationID, cal)
		if err != nil {
			return cal, err
		}
		if !strings.Contains(parsed, `"hallo"`) {
			return cal, fmt.Errorf("unsupported sentence id behavior")
		}
	}

	match := sentenceIDPattern.FindStringSubmatch(parsed)
	switch {
	case match == nil:
		cal.WriteIDMode = true
	case cal.PrefixMode && match[1] != calibrationID:
		return cal, fmt.Errorf("unexpected sentence id %q instead of %s", match[1], calibrationID)
	}
	return cal, nil
}

// Calibration returns the calibration outcome.
func (c *ServerClient) Calibration() Calibration {
	return c.calibration
}

// Info returns the parser version, if known.
func (c *ServerClient) Info() Info {
	return c.info
}

// ParseLine parses one sentence over a fresh connection.
func (c *ServerClient) ParseLine(ctx context.Context, text, id string) (string, error) {
	return c.parse(ctx, text, id, c.calibration)
}

func (c *ServerClient) parse(ctx context.Context, text, id string, cal Calibration) (string, error) {
	line := closingPunctuation.ReplaceAllString(strings.TrimRight(text, "\r\n"), "$1 $2")
	if cal.PrefixMode {
		line = id + "|" + line
	}

	xml, err := c.roundTrip(ctx, line+"\n\n")
	if err != nil {
		return "", err
	}
	if err := checkResponse(xml); err != nil {
		return "", err
	}

	attr := `sentid="` + encoding.EscapeXMLAttr(id) + `"`
	if !cal.PrefixMode {
		xml = sentenceIDPattern.ReplaceAllLiteralString(xml, attr)
	}
	if cal.WriteIDMode {
		xml = injectSentenceID(xml, attr)
	}
	return xml, nil
}

// roundTrip sends the request and reads until the server closes.
func (c *ServerClient) roundTrip(ctx context.Context, request string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return "", errors.NewIO("connect to", c.address, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.timeout > 0 {
		conn.SetDeadline(time.Now().Add(c.timeout))
	}

	if _, err := io.WriteString(conn, request); err != nil {
		return "", errors.NewIO("send to", c.address, err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.NewIO("read from", c.address, err)
	}
	return string(data), nil
}

// injectSentenceID adds attr to every <sentence element tag.
func injectSentenceID(xml, attr string) string {
	const tag = "<sentence"
	var b strings.Builder
	for {
		i := strings.Index(xml, tag)
		if i < 0 {
			b.WriteString(xml)
			return b.String()
		}
		end := i + len(tag)
		b.WriteString(xml[:end])
		if end == len(xml) || !isNameChar(xml[end]) {
			b.WriteString(" " + attr)
		}
		xml = xml[end:]
	}
}

func isNameChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
