package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio IO поверх stdin/stdout
type Stdio struct {
	in      *bufio.Reader
	out     io.Writer
	inFd    int
	isInTTY func(fd int) bool
}

// NewStdio создает IO для терминала. Один reader на весь процесс,
// чтобы несколько строк из pipe не терялись между вызовами.
func NewStdio() IO {
	return &Stdio{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		inFd:    int(os.Stdin.Fd()),
		isInTTY: term.IsTerminal,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword читает пароль без эха. Если stdin не терминал (pipe),
// читает обычную строку.
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if !s.isInTTY(s.inFd) {
		s.Printf("%s", prompt)
		line, err := s.in.ReadString('\n')
		s.Println("")
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	s.Printf("%s", prompt)
	pwBytes, err := term.ReadPassword(s.inFd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}
