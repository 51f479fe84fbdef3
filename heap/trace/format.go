package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OpKind distinguishes trace operations.
type OpKind uint8

const (
	OpRequest OpKind = iota + 1
	OpFree
)

func (k OpKind) String() string {
	switch k {
	case OpRequest:
		return KeywordRequest
	case OpFree:
		return KeywordFree
	default:
		return "OpKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Op is one trace step.
type Op struct {
	Kind OpKind
	ID   int
	Size int // bytes requested; 0 for OpFree
	Line int // source line, 0 for generated ops
}

func (o Op) String() string {
	if o.Kind == OpRequest {
		return fmt.Sprintf("%s %d %d", KeywordRequest, o.ID, o.Size)
	}
	return fmt.Sprintf("%s %d", o.Kind, o.ID)
}

// Parse reads a trace.
//
// Format, one op per line:
//
//	REQUEST <id> <size>
//	FREE <id>
//
// Blank lines and lines starting with # are skipped. Keywords are matched
// case-insensitively. Input is UTF-8, or UTF-16 when it starts with a byte
// order mark.
func Parse(r io.Reader) ([]Op, error) {
	// BOMOverride switches to UTF-16 (or strips a UTF-8 BOM) when one is present.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		op, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		op.Line = lineNo
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	switch {
	case strings.EqualFold(fields[0], KeywordRequest):
		if len(fields) != 3 {
			return Op{}, fmt.Errorf("%w: %s takes an id and a size", ErrSyntax, KeywordRequest)
		}
		id, err := parseInt(fields[1], "id")
		if err != nil {
			return Op{}, err
		}
		size, err := parseInt(fields[2], "size")
		if err != nil {
			return Op{}, err
		}
		if size <= 0 {
			return Op{}, fmt.Errorf("%w: size must be positive", ErrSyntax)
		}
		return Op{Kind: OpRequest, ID: id, Size: size}, nil

	case strings.EqualFold(fields[0], KeywordFree):
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("%w: %s takes an id", ErrSyntax, KeywordFree)
		}
		id, err := parseInt(fields[1], "id")
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpFree, ID: id}, nil

	default:
		return Op{}, fmt.Errorf("%w: unknown keyword %q", ErrSyntax, fields[0])
	}
}

func parseInt(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrSyntax, what, s)
	}
	return n, nil
}

// Write emits ops in the format read by Parse.
func Write(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		var err error
		switch op.Kind {
		case OpRequest:
			_, err = fmt.Fprintf(bw, "%s %d %d\n", KeywordRequest, op.ID, op.Size)
		case OpFree:
			_, err = fmt.Fprintf(bw, "%s %d\n", KeywordFree, op.ID)
		default:
			err = fmt.Errorf("%w: cannot write %s", ErrSyntax, op.Kind)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Balanced reports whether every requested id is freed exactly once, after
// its request.
func Balanced(ops []Op) bool {
	live := make(map[int]bool)
	for _, op := range ops {
		switch op.Kind {
		case OpRequest:
			if live[op.ID] {
				return false
			}
			live[op.ID] = true
		case OpFree:
			if !live[op.ID] {
				return false
			}
			delete(live, op.ID)
		}
	}
	return len(live) == 0
}
