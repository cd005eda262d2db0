package vm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// nameFormat accepts labels and function names: a-zA-Z_.: followed by a-zA-Z0-9_.$:
var nameFormat = regexp.MustCompile(`^[a-zA-Z_.:][0-9a-zA-Z_.$:]*$`)

const (
	maxConstant    = 32767
	pointerEntries = 2
	tempEntries    = 8
)

// Parser reads vm code line by line. Keywords are case sensitive, the downstream
// translator only accepts the lower case spelling.
type Parser struct {
	lineCounter int
}

// ParseLine parses one line of vm code. Blank and comment only lines return a nil command.
func (parser *Parser) ParseLine(line []byte) (*Command, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 || isComment(token) {
		return nil, nil
	}
	var cmd Command
	var err error
	switch token {
	case "push", "pop":
		cmd, line, err = parser.parseMemoryAccess(token, line)
	case "label", "goto", "if-goto":
		cmd, line, err = parser.parseFlow(token, line)
	case "function", "call":
		cmd, line, err = parser.parseFunctionOrCall(token, line)
	case "return":
		cmd = Return()
	default:
		op, ok := arithmeticMap[token]
		if !ok {
			return nil, parser.makeError(token, "unknown command")
		}
		cmd = Op(op)
	}
	if err != nil {
		return nil, err
	}
	err = parser.parseRemainContent(line)
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

// Parse reads every command from rd.
func (parser *Parser) Parse(rd io.Reader) ([]Command, error) {
	var cmds []Command
	reader := bufio.NewReader(rd)
	parser.lineCounter = 0
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		parser.lineCounter++
		cmd, parseErr := parser.ParseLine(line)
		if parseErr != nil {
			return nil, parseErr
		}
		if cmd != nil {
			cmds = append(cmds, *cmd)
		}
		if err == io.EOF {
			return cmds, nil
		}
	}
}

// Validate checks that rd only contains well formed vm commands.
func Validate(rd io.Reader) error {
	parser := &Parser{}
	_, err := parser.Parse(rd)
	return err
}

func (parser *Parser) parseMemoryAccess(keyword string, line []byte) (Command, []byte, error) {
	token, line := parser.getNextToken(line)
	segment, ok := segmentMap[token]
	if !ok {
		return Command{}, nil, parser.makeError(token, "unknown segment")
	}
	index, line, err := parser.getIntegerValue(line)
	if err != nil {
		return Command{}, nil, err
	}
	switch segment {
	case ConstantSegment:
		if keyword == "pop" {
			return Command{}, nil, parser.makeError(token, "cannot pop to constant segment")
		}
		if index > maxConstant {
			return Command{}, nil, parser.makeError(strconv.Itoa(index), "constant out of range")
		}
	case PointerSegment:
		if index >= pointerEntries {
			return Command{}, nil, parser.makeError(strconv.Itoa(index), "pointer index out of range")
		}
	case TempSegment:
		if index >= tempEntries {
			return Command{}, nil, parser.makeError(strconv.Itoa(index), "temp index out of range")
		}
	}
	if keyword == "push" {
		return Push(segment, index), line, nil
	}
	return Pop(segment, index), line, nil
}

func (parser *Parser) parseFlow(keyword string, line []byte) (Command, []byte, error) {
	line, name, err := parser.parseName(line)
	if err != nil {
		return Command{}, nil, err
	}
	switch keyword {
	case "label":
		return Label(name), line, nil
	case "goto":
		return Goto(name), line, nil
	default:
		return IfGoto(name), line, nil
	}
}

func (parser *Parser) parseFunctionOrCall(keyword string, line []byte) (Command, []byte, error) {
	line, name, err := parser.parseName(line)
	if err != nil {
		return Command{}, nil, err
	}
	count, line, err := parser.getIntegerValue(line)
	if err != nil {
		return Command{}, nil, err
	}
	if keyword == "function" {
		return Function(name, count), line, nil
	}
	return Call(name, count), line, nil
}

func (parser *Parser) parseName(line []byte) ([]byte, string, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 || !nameFormat.MatchString(token) {
		return nil, "", parser.makeError(token, "incorrect name format")
	}
	return line, token, nil
}

func (parser *Parser) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 {
		return -1, nil, parser.makeError(token, "missing index")
	}
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, parser.makeError(token, "index must be a non negative integer")
	}
	return ret, line, nil
}

// getNextToken returns the next space separated token and the remaining line.
func (parser *Parser) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (parser *Parser) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 || isComment(string(remain)) {
		return nil
	}
	return parser.makeError(string(remain), "unexpected trailing content")
}

func isComment(token string) bool {
	return len(token) >= 2 && token[0] == '/' && token[1] == '/'
}

var ErrSyntax = errors.New("vm syntax error")

func (parser *Parser) makeError(near string, msg string) error {
	return fmt.Errorf("%w: near %q at line %d, msg: %s", ErrSyntax, near, parser.lineCounter, msg)
}
